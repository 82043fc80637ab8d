package platform

import (
	"fmt"
	"regexp"
)

var (
	OpenAITokenPattern     = regexp.MustCompile(`^sk-[A-Za-z0-9_\-]{20,}$`)
	OpenRouterTokenPattern = regexp.MustCompile(`^sk-or-[A-Za-z0-9_\-]{20,}$`)
)

func ValidateOpenAIToken(token string) error {
	if token == "" {
		return fmt.Errorf("OpenAI API token is required")
	}

	if !OpenAITokenPattern.MatchString(token) {
		return fmt.Errorf("invalid OpenAI API token format: expected sk-...")
	}

	return nil
}

func ValidateOpenRouterToken(token string) error {
	if token == "" {
		return fmt.Errorf("OpenRouter API token is required")
	}

	if !OpenRouterTokenPattern.MatchString(token) {
		return fmt.Errorf("invalid OpenRouter API token format: expected sk-or-...")
	}

	return nil
}

func ValidateNotEmpty(value string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

func ValidateRange(value, min, max int, fieldName string) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", fieldName, min, max, value)
	}
	return nil
}
