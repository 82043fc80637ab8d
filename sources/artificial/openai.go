package artificial

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/metrics"
	"fitcoach/sources/texting/tokenizer"
	"fitcoach/sources/tracing"

	"github.com/sashabaranov/go-openai"
)

func NewOpenAIClient(config *configuration.Config, client *http.Client) *openai.Client {
	openaiConfig := openai.DefaultConfig(config.AI.OpenAIToken)
	openaiConfig.HTTPClient = client
	if config.AI.OpenAIBaseURL != "" {
		openaiConfig.BaseURL = config.AI.OpenAIBaseURL
	}
	return openai.NewClientWithConfig(openaiConfig)
}

type OpenAICompleter struct {
	ai      *openai.Client
	config  *configuration.Config
	metrics *metrics.MetricsService
	tokens  *tokenizer.Counter
}

func NewOpenAICompleter(ai *openai.Client, config *configuration.Config, metrics *metrics.MetricsService, tokens *tokenizer.Counter) *OpenAICompleter {
	return &OpenAICompleter{ai: ai, config: config, metrics: metrics, tokens: tokens}
}

func (x *OpenAICompleter) Complete(ctx context.Context, log *tracing.Logger, request CompletionRequest) (string, error) {
	model := x.config.AI.Model
	log = log.With(tracing.AiProvider, configuration.ProviderOpenAI, tracing.AiModel, model, tracing.AiKind, request.Kind)

	completionRequest := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: request.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: request.UserPrompt},
		},
		Temperature: request.Temperature,
		MaxTokens:   x.tokens.Budget(request.MaxTokens, x.config.AI.ContextWindow, request.SystemPrompt, request.UserPrompt),
	}

	startTime := time.Now()
	response, err := x.ai.CreateChatCompletion(ctx, completionRequest)
	duration := time.Since(startTime)

	x.metrics.RecordAIRequestDuration(duration, model, status(err))
	if err != nil {
		log.E("ai completion failed", tracing.InnerError, err, "duration_ms", duration.Milliseconds())
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(response.Choices) == 0 {
		log.E("Empty choices in completion response")
		return "", ErrEmptyCompletion
	}

	x.metrics.RecordUsage(response.Usage.TotalTokens, 0, model, request.Kind)
	log.I("ai completed", tracing.AiTokens, response.Usage.TotalTokens, "duration_ms", duration.Milliseconds())

	return response.Choices[0].Message.Content, nil
}
