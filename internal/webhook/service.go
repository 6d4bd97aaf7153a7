package webhook

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"wagate/internal/constants"
	"wagate/internal/logger"
	"wagate/pkg/cel"
	pkgerrors "wagate/pkg/errors"
	"wagate/pkg/metrics"
	"wagate/pkg/models"
)

type Service struct {
	repo      Repository
	sender    Sender
	evaluator *cel.Evaluator
	logger    logger.Logger
}

func NewService(repo Repository, sender Sender, evaluator *cel.Evaluator, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		sender:    sender,
		evaluator: evaluator,
		logger:    log,
	}
}

func (s *Service) Create(ctx context.Context, hook *Webhook) error {
	if err := s.validate(hook); err != nil {
		return err
	}
	return s.repo.Create(ctx, hook)
}

func (s *Service) Get(ctx context.Context, id string) (*Webhook, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, instance string) ([]Webhook, error) {
	return s.repo.List(ctx, instance)
}

func (s *Service) Update(ctx context.Context, hook *Webhook) error {
	if err := s.validate(hook); err != nil {
		return err
	}
	return s.repo.Update(ctx, hook)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListDeliveries(ctx context.Context, webhookID string, limit int) ([]Delivery, error) {
	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}
	return s.repo.ListDeliveries(ctx, webhookID, limit)
}

// Dispatch fans a processed event out to every matching enabled webhook of
// the event's instance. Delivery failures are recorded but do not fail the
// dispatch: one broken endpoint must not block the rest.
func (s *Service) Dispatch(ctx context.Context, event models.ProcessedEvent) error {
	hooks, err := s.repo.ListEnabled(ctx, event.Instance)
	if err != nil {
		return fmt.Errorf("failed to load webhooks: %w", err)
	}

	for _, hook := range hooks {
		matched, err := s.matches(ctx, hook, event)
		if err != nil {
			s.logger.WarnwCtx(ctx, "Webhook filter evaluation failed, skipping",
				"webhook_id", hook.ID,
				"error", err,
			)
			s.record(ctx, hook, event, Delivery{Status: DeliveryStatusSkipped, LastError: err.Error()})
			continue
		}
		if !matched {
			continue
		}

		start := time.Now()
		attempts, err := s.sender.Send(ctx, hook, event)
		if err != nil {
			metrics.IncWebhookDelivery("failed")
			metrics.ObserveWebhookDeliveryDuration("failed", time.Since(start))
			s.logger.ErrorwCtx(ctx, "Webhook delivery failed",
				"webhook_id", hook.ID,
				"url", hook.URL,
				"attempts", attempts,
				"error", err,
			)
			s.record(ctx, hook, event, Delivery{Status: DeliveryStatusFailed, Attempts: attempts, LastError: err.Error()})
			continue
		}

		metrics.IncWebhookDelivery("delivered")
		metrics.ObserveWebhookDeliveryDuration("delivered", time.Since(start))
		now := time.Now()
		s.record(ctx, hook, event, Delivery{Status: DeliveryStatusDelivered, Attempts: attempts, DeliveredAt: &now})
	}

	return nil
}

func (s *Service) matches(ctx context.Context, hook Webhook, event models.ProcessedEvent) (bool, error) {
	if len(hook.Events) > 0 && !containsString(hook.Events, event.MessageType) {
		return false, nil
	}

	if hook.FilterExpression == "" {
		return true, nil
	}

	return s.evaluator.EvaluateFilter(ctx, hook.FilterExpression, event)
}

func (s *Service) record(ctx context.Context, hook Webhook, event models.ProcessedEvent, delivery Delivery) {
	delivery.WebhookID = hook.ID
	delivery.EventID = event.ID

	if err := s.repo.RecordDelivery(ctx, &delivery); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to record webhook delivery",
			"webhook_id", hook.ID,
			"error", err,
		)
	}
}

func (s *Service) validate(hook *Webhook) error {
	if hook.Name == "" {
		return pkgerrors.ErrValidation.WithDetail("message", "webhook name is required")
	}
	if hook.Instance == "" {
		return pkgerrors.ErrValidation.WithDetail("message", "webhook instance is required")
	}

	parsed, err := url.Parse(hook.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return pkgerrors.ErrValidation.WithDetail("message", fmt.Sprintf("invalid webhook url: %s", hook.URL))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return pkgerrors.ErrValidation.WithDetail("message", fmt.Sprintf("unsupported webhook url scheme: %s", parsed.Scheme))
	}

	if hook.FilterExpression != "" {
		if err := s.evaluator.ValidateFilterExpression(hook.FilterExpression); err != nil {
			return pkgerrors.ErrValidation.WithCause(err).WithDetail("message", err.Error())
		}
	}

	return nil
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
