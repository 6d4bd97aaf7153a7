package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wagate/internal/config"
	"wagate/internal/constants"
	"wagate/internal/logger"
	"wagate/pkg/circuitbreaker"
	"wagate/pkg/models"
	"wagate/pkg/retry"
)

type Sender interface {
	Send(ctx context.Context, hook Webhook, event models.ProcessedEvent) (attempts int, err error)
}

// HTTPSender delivers events with per-webhook retry and circuit breaking.
type HTTPSender struct {
	client   *http.Client
	cfg      config.WebhookConfig
	logger   logger.Logger
	mu       sync.Mutex
	breakers map[string]*circuitbreaker.Wrapper
}

func NewHTTPSender(cfg config.WebhookConfig, log logger.Logger) *HTTPSender {
	timeout := cfg.DeliveryTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	return &HTTPSender{
		client: &http.Client{
			Timeout: timeout,
		},
		cfg:      cfg,
		logger:   log,
		breakers: make(map[string]*circuitbreaker.Wrapper),
	}
}

func (s *HTTPSender) Send(ctx context.Context, hook Webhook, event models.ProcessedEvent) (int, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	policy := s.retryPolicy()
	attempts := 0

	err = retry.RetryWithCallback(ctx, policy, func() error {
		attempts++
		return s.post(ctx, hook, body, event.ID)
	}, func(attempt int, err error, nextDelay time.Duration) {
		s.logger.WarnwCtx(ctx, "Retrying webhook delivery",
			"webhook_id", hook.ID,
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", err,
		)
	})

	return attempts, err
}

func (s *HTTPSender) post(ctx context.Context, hook Webhook, body []byte, eventID string) error {
	deliver := func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
		if err != nil {
			return nil, retry.NewFatalError(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-ID", hook.ID)
		req.Header.Set("X-Event-ID", eventID)

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("webhook request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
			return nil, fmt.Errorf("webhook returned status: %d", resp.StatusCode)
		}
		return nil, nil
	}

	if !s.cfg.CircuitBreaker.Enabled {
		_, err := deliver()
		return err
	}

	breaker := s.breakerFor(hook.ID)
	_, err := breaker.ExecuteWithContext(ctx, deliver)
	breaker.RecordRequest(err == nil)
	return err
}

func (s *HTTPSender) breakerFor(webhookID string) *circuitbreaker.Wrapper {
	s.mu.Lock()
	defer s.mu.Unlock()

	if breaker, ok := s.breakers[webhookID]; ok {
		return breaker
	}

	cfg := circuitbreaker.DefaultConfig("webhook:" + webhookID)
	if s.cfg.CircuitBreaker.MaxRequests > 0 {
		cfg.MaxRequests = s.cfg.CircuitBreaker.MaxRequests
	}
	if s.cfg.CircuitBreaker.Interval > 0 {
		cfg.Interval = s.cfg.CircuitBreaker.Interval
	}
	if s.cfg.CircuitBreaker.Timeout > 0 {
		cfg.Timeout = s.cfg.CircuitBreaker.Timeout
	}
	if s.cfg.CircuitBreaker.FailureRatio > 0 {
		minRequests := s.cfg.CircuitBreaker.MinRequests
		if minRequests == 0 {
			minRequests = 3
		}
		cfg.ReadyToTrip = circuitbreaker.TrippedAt(s.cfg.CircuitBreaker.FailureRatio, minRequests)
	}

	breaker := circuitbreaker.NewWrapper(cfg)
	s.breakers[webhookID] = breaker
	return breaker
}

func (s *HTTPSender) retryPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxElapsedTime = 0

	if s.cfg.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = s.cfg.Retry.MaxAttempts
	}
	if s.cfg.Retry.InitialInterval > 0 {
		policy.InitialInterval = s.cfg.Retry.InitialInterval
	}
	if s.cfg.Retry.MaxInterval > 0 {
		policy.MaxInterval = s.cfg.Retry.MaxInterval
	}
	if s.cfg.Retry.Multiplier > 0 {
		policy.Multiplier = s.cfg.Retry.Multiplier
	}
	if s.cfg.Retry.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = s.cfg.Retry.MaxElapsedTime
	}

	return policy
}
