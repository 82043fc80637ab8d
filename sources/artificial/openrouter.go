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

	openrouter "github.com/revrost/go-openrouter"
	"github.com/shopspring/decimal"
)

func NewOpenRouterClient(config *configuration.Config, client *http.Client) *openrouter.Client {
	clientConfig := openrouter.DefaultConfig(config.AI.OpenRouterToken)
	clientConfig.HTTPClient = client
	clientConfig.XTitle = "FitCoach"
	clientConfig.HttpReferer = "https://fitcoach.app"

	return openrouter.NewClientWithConfig(*clientConfig)
}

type OpenRouterCompleter struct {
	ai      *openrouter.Client
	config  *configuration.Config
	metrics *metrics.MetricsService
	tokens  *tokenizer.Counter
}

func NewOpenRouterCompleter(ai *openrouter.Client, config *configuration.Config, metrics *metrics.MetricsService, tokens *tokenizer.Counter) *OpenRouterCompleter {
	return &OpenRouterCompleter{ai: ai, config: config, metrics: metrics, tokens: tokens}
}

func (x *OpenRouterCompleter) Complete(ctx context.Context, log *tracing.Logger, request CompletionRequest) (string, error) {
	model := x.config.AI.Model
	log = log.With(tracing.AiProvider, configuration.ProviderOpenRouter, tracing.AiModel, model, tracing.AiKind, request.Kind)

	completionRequest := openrouter.ChatCompletionRequest{
		Model:  model,
		Models: x.config.AI.FallbackModels,
		Messages: []openrouter.ChatCompletionMessage{
			{
				Role:    openrouter.ChatMessageRoleSystem,
				Content: openrouter.Content{Text: request.SystemPrompt},
			},
			{
				Role:    openrouter.ChatMessageRoleUser,
				Content: openrouter.Content{Text: request.UserPrompt},
			},
		},
		Provider: &openrouter.ChatProvider{
			DataCollection: openrouter.DataCollectionDeny,
		},
		Usage:       &openrouter.IncludeUsage{Include: true},
		Temperature: request.Temperature,
		MaxTokens:   x.tokens.Budget(request.MaxTokens, x.config.AI.ContextWindow, request.SystemPrompt, request.UserPrompt),
	}

	startTime := time.Now()
	response, err := x.ai.CreateChatCompletion(ctx, completionRequest)
	duration := time.Since(startTime)

	x.metrics.RecordAIRequestDuration(duration, model, status(err))
	if err != nil {
		log.E("ai completion failed", tracing.InnerError, err, "duration_ms", duration.Milliseconds())
		return "", fmt.Errorf("openrouter completion: %w", err)
	}

	if len(response.Choices) == 0 {
		log.E("Empty choices in completion response")
		return "", ErrEmptyCompletion
	}

	tokens := response.Usage.TotalTokens
	cost := decimal.NewFromFloat(response.Usage.Cost)
	x.metrics.RecordUsage(tokens, cost.InexactFloat64(), model, request.Kind)
	log.I("ai completed", tracing.AiCost, cost.String(), tracing.AiTokens, tokens, "duration_ms", duration.Milliseconds())

	return response.Choices[0].Message.Content.Text, nil
}
