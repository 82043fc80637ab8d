package platform

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNotFound           = errors.New("not found")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrTimeout            = errors.New("timeout")
	ErrPartialAggregation = errors.New("partial aggregation failure")
)

// ErrorCode maps an error onto the public failure taxonomy.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrGenerationFailed):
		return "generation_failed"
	case errors.Is(err, ErrPartialAggregation):
		return "partial_aggregation_failure"
	default:
		return "internal"
	}
}

// IsDeadline reports whether err was caused by a cancelled or expired context.
func IsDeadline(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return ctx != nil && ctx.Err() != nil
}
