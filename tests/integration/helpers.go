package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wagate/internal/config"
	"wagate/internal/logger"
	"wagate/internal/webhook"
	"wagate/pkg/cel"
	"wagate/pkg/models"
)

const (
	containerStartupTimeout = 60
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func newWebhookService(t *testing.T, repo webhook.Repository) *webhook.Service {
	t.Helper()

	evaluator, err := cel.NewEvaluator()
	require.NoError(t, err)

	cfg := config.WebhookConfig{
		DeliveryTimeout: 2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
	}
	sender := webhook.NewHTTPSender(cfg, createTestLogger())
	return webhook.NewService(repo, sender, evaluator, createTestLogger())
}

func createTestWebhook(instance, name, url string, enabled bool) *webhook.Webhook {
	return &webhook.Webhook{
		Instance: instance,
		Name:     name,
		URL:      url,
		Events:   []string{"conversation", "image"},
		Enabled:  enabled,
	}
}

func createTestProcessedEvent(id, instance, chatJID, messageType, content string) models.ProcessedEvent {
	return models.ProcessedEvent{
		ID:          id,
		Instance:    instance,
		Timestamp:   time.Now(),
		ChatJID:     chatJID,
		SenderJID:   chatJID,
		MessageType: messageType,
		Content:     content,
	}
}
