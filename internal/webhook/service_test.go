package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagate/internal/config"
	"wagate/internal/logger"
	"wagate/pkg/cel"
	"wagate/pkg/models"
)

type fakeRepository struct {
	mu         sync.Mutex
	hooks      []Webhook
	deliveries []Delivery
}

func (f *fakeRepository) Create(ctx context.Context, hook *Webhook) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks = append(f.hooks, *hook)
	return nil
}

func (f *fakeRepository) Get(ctx context.Context, id string) (*Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.hooks {
		if f.hooks[i].ID == id {
			return &f.hooks[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) List(ctx context.Context, instance string) ([]Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Webhook
	for _, h := range f.hooks {
		if h.Instance == instance {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListEnabled(ctx context.Context, instance string) ([]Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Webhook
	for _, h := range f.hooks {
		if h.Instance == instance && h.Enabled {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeRepository) Update(ctx context.Context, hook *Webhook) error { return nil }
func (f *fakeRepository) Delete(ctx context.Context, id string) error    { return nil }

func (f *fakeRepository) RecordDelivery(ctx context.Context, delivery *Delivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries = append(f.deliveries, *delivery)
	return nil
}

func (f *fakeRepository) ListDeliveries(ctx context.Context, webhookID string, limit int) ([]Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deliveries, nil
}

func newTestService(t *testing.T, repo Repository, cfg config.WebhookConfig) *Service {
	t.Helper()
	evaluator, err := cel.NewEvaluator()
	require.NoError(t, err)
	sender := NewHTTPSender(cfg, logger.NopLogger())
	return NewService(repo, sender, evaluator, logger.NopLogger())
}

func fastRetryConfig() config.WebhookConfig {
	return config.WebhookConfig{
		DeliveryTimeout: 2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			Multiplier:      2.0,
		},
	}
}

func TestDispatchDeliversMatchingWebhook(t *testing.T) {
	var received []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received = append(received, r.Header.Get("X-Event-ID"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	repo := &fakeRepository{
		hooks: []Webhook{
			{
				ID:       "hook-1",
				Instance: "main",
				Name:     "all-messages",
				URL:      server.URL,
				Enabled:  true,
			},
		},
	}
	svc := newTestService(t, repo, fastRetryConfig())

	err := svc.Dispatch(context.Background(), models.ProcessedEvent{
		ID:          "evt-1",
		Instance:    "main",
		MessageType: "conversation",
		Content:     "hi",
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "evt-1", received[0])

	require.Len(t, repo.deliveries, 1)
	assert.Equal(t, DeliveryStatusDelivered, repo.deliveries[0].Status)
	assert.Equal(t, "hook-1", repo.deliveries[0].WebhookID)
}

func TestDispatchSkipsNonMatchingEventType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook should not have been called")
	}))
	defer server.Close()

	repo := &fakeRepository{
		hooks: []Webhook{
			{
				ID:       "hook-1",
				Instance: "main",
				Name:     "images-only",
				URL:      server.URL,
				Events:   []string{"imageMessage"},
				Enabled:  true,
			},
		},
	}
	svc := newTestService(t, repo, fastRetryConfig())

	err := svc.Dispatch(context.Background(), models.ProcessedEvent{
		ID:          "evt-1",
		Instance:    "main",
		MessageType: "conversation",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.deliveries)
}

func TestDispatchAppliesFilterExpression(t *testing.T) {
	var calls int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	repo := &fakeRepository{
		hooks: []Webhook{
			{
				ID:               "hook-1",
				Instance:         "main",
				Name:             "groups-only",
				URL:              server.URL,
				FilterExpression: `chatJid.endsWith("@g.us")`,
				Enabled:          true,
			},
		},
	}
	svc := newTestService(t, repo, fastRetryConfig())

	err := svc.Dispatch(context.Background(), models.ProcessedEvent{
		ID:          "evt-direct",
		Instance:    "main",
		ChatJID:     "5215512345678@s.whatsapp.net",
		MessageType: "conversation",
	})
	require.NoError(t, err)

	err = svc.Dispatch(context.Background(), models.ProcessedEvent{
		ID:          "evt-group",
		Instance:    "main",
		ChatJID:     "123456789012345678@g.us",
		MessageType: "conversation",
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestDispatchRecordsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := &fakeRepository{
		hooks: []Webhook{
			{
				ID:       "hook-1",
				Instance: "main",
				Name:     "broken",
				URL:      server.URL,
				Enabled:  true,
			},
		},
	}
	svc := newTestService(t, repo, fastRetryConfig())

	err := svc.Dispatch(context.Background(), models.ProcessedEvent{
		ID:          "evt-1",
		Instance:    "main",
		MessageType: "conversation",
	})
	require.NoError(t, err)

	require.Len(t, repo.deliveries, 1)
	assert.Equal(t, DeliveryStatusFailed, repo.deliveries[0].Status)
	assert.Equal(t, 2, repo.deliveries[0].Attempts)
	assert.NotEmpty(t, repo.deliveries[0].LastError)
}

func TestCreateValidation(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo, fastRetryConfig())

	tests := []struct {
		name string
		hook Webhook
	}{
		{
			name: "missing name",
			hook: Webhook{Instance: "main", URL: "https://example.com/hook"},
		},
		{
			name: "missing instance",
			hook: Webhook{Name: "hook", URL: "https://example.com/hook"},
		},
		{
			name: "bad url",
			hook: Webhook{Name: "hook", Instance: "main", URL: "not a url"},
		},
		{
			name: "unsupported scheme",
			hook: Webhook{Name: "hook", Instance: "main", URL: "ftp://example.com/hook"},
		},
		{
			name: "bad filter expression",
			hook: Webhook{Name: "hook", Instance: "main", URL: "https://example.com/hook", FilterExpression: "content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(context.Background(), &tt.hook)
			assert.Error(t, err)
		})
	}

	valid := Webhook{
		Name:             "hook",
		Instance:         "main",
		URL:              "https://example.com/hook",
		FilterExpression: `messageType == "conversation"`,
	}
	assert.NoError(t, svc.Create(context.Background(), &valid))
}
