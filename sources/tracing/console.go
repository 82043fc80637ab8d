package tracing

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

const (
	ExecutionTime   = "exe_time"
	OutsiderKind    = "outsider_kind"
	ProxyUrl        = "proxy_url"
	ProxyRes        = "proxy_res"
	AiKind          = "ai_kind"
	AiModel         = "ai_model"
	AiProvider      = "ai_provider"
	AiTokens        = "ai_tokens"
	AiCost          = "ai_cost"
	InnerError      = "inner_error"
	UserId          = "user_id"
	QueryHash       = "query_hash"
	CacheOutcome    = "cache_outcome"
	FromCache       = "from_cache"
	PlanId          = "plan_id"
	PlanType        = "plan_type"
	WeekNumber      = "week_number"
	BatchId         = "batch_id"
	BatchTotal      = "batch_total"
	BatchUpdated    = "batch_updated"
	BatchFailed     = "batch_failed"
	BatchSkipped    = "batch_skipped"
	EventsCount     = "events_count"
	ProgressCount   = "progress_count"
	Confidence      = "confidence"
	RequestMethod   = "request_method"
	RequestPath     = "request_path"
	RequestStatus   = "request_status"
	SqlQuery        = "sql_query"
	Scope           = "scope"
	FeatureName     = "feature_name"
	FeatureFallback = "feature_fallback"
)

type Logger struct {
	log *slog.Logger
	ctx context.Context
}

func NewConsoleLogger() *Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	logger.InfoContext(ctx, "Initializing logger")
	return &Logger{log: logger, ctx: context.Background()}
}

// NewSilentLogger discards every record. Used by tests and one-shot tooling.
func NewSilentLogger() *Logger {
	return &Logger{log: slog.New(slog.NewJSONHandler(io.Discard, nil)), ctx: context.Background()}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{log: l.log.With(args...), ctx: l.ctx}
}

func (l *Logger) D(msg string, args ...any) {
	l.log.DebugContext(l.ctx, msg, args...)
}

func (l *Logger) I(msg string, args ...any) {
	l.log.InfoContext(l.ctx, msg, args...)
}

func (l *Logger) W(msg string, args ...any) {
	l.log.WarnContext(l.ctx, msg, args...)
}

func (l *Logger) E(msg string, args ...any) {
	l.log.ErrorContext(l.ctx, msg, args...)
}

func (l *Logger) F(msg string, args ...any) {
	l.log.ErrorContext(l.ctx, msg, args...)
	panic(msg)
}
