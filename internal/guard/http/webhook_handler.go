package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/order-guard/internal/errors"
	"github.com/allisson/order-guard/internal/guard/http/dto"
	"github.com/allisson/order-guard/internal/guard/usecase"
	"github.com/allisson/order-guard/internal/httputil"
	"github.com/allisson/order-guard/internal/worker"
)

// Dispatcher schedules background work without blocking the request.
type Dispatcher interface {
	Submit(task worker.Task)
}

// WebhookHandler accepts webhook deliveries and dispatches accepted payloads
// for asynchronous processing. The sender always receives a fast synchronous
// response; processing latency never shows up on the webhook path.
type WebhookHandler struct {
	processor  usecase.UseCase
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(
	processor usecase.UseCase,
	dispatcher Dispatcher,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		processor:  processor,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes POST /webhook. Signature verification and rate limiting
// have already run as middleware; this handler parses, filters by event type,
// and dispatches.
func (h *WebhookHandler) Handle(c *gin.Context) {
	raw, ok := getRawBody(c)
	if !ok {
		// Middleware always stores the body; missing means a wiring bug.
		httputil.HandleInternalErrorGin(c, apperrors.New("raw body missing from context"), h.logger)
		return
	}

	payload, err := dto.ParseWebhookPayload(raw)
	if err != nil {
		httputil.HandleBadRequestGin(c, "Invalid JSON", err, h.logger)
		return
	}

	if payload.Type != dto.EventOrderCreated {
		h.logger.Info("ignoring webhook event type", slog.String("event_type", payload.Type))
		c.JSON(http.StatusOK, gin.H{
			"status": "ignored",
			"reason": fmt.Sprintf("event type '%s' not handled", payload.Type),
		})
		return
	}

	h.dispatcher.Submit(func(ctx context.Context) {
		h.processor.Process(ctx, raw)
	})

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
