package artificial

import (
	"context"
	"errors"

	"fitcoach/sources/configuration"
	"fitcoach/sources/tracing"
)

var ErrEmptyCompletion = errors.New("completion has no choices")

type CompletionRequest struct {
	Kind         string
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// Completer is an opaque text-completion service.
type Completer interface {
	Complete(ctx context.Context, log *tracing.Logger, request CompletionRequest) (string, error)
}

func NewCompleter(config *configuration.Config, openrouter *OpenRouterCompleter, openai *OpenAICompleter, log *tracing.Logger) Completer {
	switch config.AI.Provider {
	case configuration.ProviderOpenAI:
		log.I("Using OpenAI completion provider", tracing.AiModel, config.AI.Model)
		return openai
	default:
		log.I("Using OpenRouter completion provider", tracing.AiModel, config.AI.Model)
		return openrouter
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
