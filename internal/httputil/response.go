// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HandleUnauthorizedGin writes a 401 Unauthorized response and aborts the
// request chain.
func HandleUnauthorizedGin(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
	c.Abort()
}

// HandleRateLimitedGin writes a 429 Too Many Requests response and aborts the
// request chain.
func HandleRateLimitedGin(c *gin.Context, message string) {
	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   "rate_limit_exceeded",
		Message: message,
	})
	c.Abort()
}

// HandleBadRequestGin writes a 400 Bad Request response with a stable public
// message; the underlying error is logged but never exposed to the sender.
func HandleBadRequestGin(c *gin.Context, message string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

// HandleInternalErrorGin writes a 500 Internal Server Error response without
// exposing error details to the client.
func HandleInternalErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Error("request failed", slog.Any("error", err))
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
