package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aceleracloud/mongo-queue/internal/conf"
	"github.com/aceleracloud/mongo-queue/pkg/mqueue"
)

// WebhookHandler relays each message payload to a configured HTTP endpoint
// as JSON. Delivery is at-least-once: a non-2xx response or transport
// failure leaves the message for redelivery, and the queue's dead-letter
// path catches endpoints that keep failing.
type WebhookHandler struct {
	queueName string
	url       string
	client    *http.Client
	logger    *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(queueCfg *conf.QueueConfig, workerCfg *conf.WorkerConfig, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		queueName: queueCfg.Name,
		url:       workerCfg.Dispatcher.WebhookURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger.Named("WebhookHandler"),
	}
}

// QueueName implements MessageHandler.
func (h *WebhookHandler) QueueName() string {
	return h.queueName
}

// Handle implements MessageHandler.
func (h *WebhookHandler) Handle(ctx context.Context, msg *mqueue.Message) error {
	var payload interface{}
	if err := msg.DecodePayload(&payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	body, err := json.Marshal(map[string]interface{}{
		"id":      msg.ID,
		"tries":   msg.Tries,
		"payload": payload,
	})
	if err != nil {
		return fmt.Errorf("encode webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook endpoint returned %s", resp.Status)
	}

	h.logger.Debug("Delivered message", zap.String("id", msg.ID), zap.Int("status", resp.StatusCode))
	return nil
}

var _ MessageHandler = (*WebhookHandler)(nil)
