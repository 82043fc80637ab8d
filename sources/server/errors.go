package server

import (
	"errors"
	"net/http"

	"fitcoach/sources/platform"

	"github.com/gin-gonic/gin"
)

var errThrottled = errors.New("too many requests, slow down")

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errThrottled):
		return http.StatusTooManyRequests
	case errors.Is(err, platform.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, platform.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, platform.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, platform.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, platform.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError aborts with the mapped status. Only caller mistakes are echoed back verbatim.
func respondError(c *gin.Context, err error) {
	status := StatusFor(err)

	code := platform.ErrorCode(err)
	message := publicMessage(status)
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusTooManyRequests:
		message = err.Error()
	}
	if status == http.StatusTooManyRequests {
		code = "throttled"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func publicMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "user profile not found"
	case http.StatusGatewayTimeout:
		return "the request timed out"
	case http.StatusBadGateway:
		return "failed to generate a response"
	default:
		return "internal error"
	}
}
