package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"fitcoach/sources/tracing"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Path is the location of the YAML configuration file.
type Path string

var envPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(?::([^}]*))?\}`)

// NewYaml reads the configuration from the given path (default: config.yaml),
// expands ${VAR} and ${VAR:default} references and applies defaults.
// A .env file next to the working directory is loaded first when present.
func NewYaml(path Path, log *tracing.Logger) (*Config, error) {
	defer tracing.ProfilePoint(log, "Configuration loaded", "configuration.load")()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.W("failed to load .env file", tracing.InnerError, err)
	}

	filePath := string(path)
	if filePath == "" {
		filePath = os.Getenv("CONFIG_PATH")
	}
	if filePath == "" {
		filePath = "config.yaml"
	}

	log.I("reading configuration", "path", filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		log.E("failed to read configuration file", tracing.InnerError, err, "path", filePath)
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	config, err := Parse(content)
	if err != nil {
		log.E("failed to parse configuration file", tracing.InnerError, err, "path", filePath)
		return nil, err
	}

	if err := config.Validate(); err != nil {
		log.E("configuration is invalid", tracing.InnerError, err, "path", filePath)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Parse decodes YAML content after environment expansion and fills defaults.
func Parse(content []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(content))), &config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	config.ApplyDefaults()
	return &config, nil
}

// expandEnv replaces ${VAR} or ${VAR:default} with environment values.
// An unset variable without a default expands to an empty string.
func expandEnv(content string) string {
	return envPattern.ReplaceAllStringFunc(content, func(match string) string {
		matches := envPattern.FindStringSubmatch(match)
		key := matches[1]
		defaultValue := ""
		if len(matches) > 2 {
			defaultValue = matches[2]
		}

		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	})
}
