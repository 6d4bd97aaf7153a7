package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wagate/internal/broker"
	"wagate/internal/classify"
	"wagate/internal/logger"
	"wagate/internal/messagelog"
	"wagate/internal/wajid"
	"wagate/pkg/metrics"
	"wagate/pkg/models"
)

// EventDispatcher fans processed events out to their subscribers.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event models.ProcessedEvent) error
}

// Service runs the inbound pipeline: canonicalize the chat and sender
// addresses, classify the envelope, persist the entry, publish the processed
// event, and hand it to the webhook dispatcher.
type Service struct {
	classifier     classify.Classifier
	producer       broker.Producer
	log            messagelog.Repository
	webhooks       EventDispatcher
	processedTopic string
	logger         logger.Logger
}

func NewService(
	classifier classify.Classifier,
	producer broker.Producer,
	log messagelog.Repository,
	webhooks EventDispatcher,
	processedTopic string,
	lg logger.Logger,
) *Service {
	return &Service{
		classifier:     classifier,
		producer:       producer,
		log:            log,
		webhooks:       webhooks,
		processedTopic: processedTopic,
		logger:         lg,
	}
}

// Handle implements broker.HandlerFunc.
func (s *Service) Handle(ctx context.Context, event models.InboundEvent) error {
	start := time.Now()

	processed, err := s.Process(ctx, event)
	if err != nil {
		metrics.ObserveDispatchDuration(time.Since(start), "error")
		return err
	}

	metrics.ObserveDispatchDuration(time.Since(start), "ok")
	s.logger.InfowCtx(ctx, "Event dispatched",
		"message_type", processed.MessageType,
		"chat_jid", processed.ChatJID,
	)
	return nil
}

// Process transforms one inbound event into its processed form and forwards
// it. The transformation itself is total: any envelope classifies, and any
// address canonicalizes.
func (s *Service) Process(ctx context.Context, event models.InboundEvent) (models.ProcessedEvent, error) {
	processed := s.transform(event)

	metrics.IncClassifiedMessage(processed.MessageType)

	if err := s.producer.Publish(ctx, s.processedTopic, processed.ID, processed); err != nil {
		return processed, fmt.Errorf("failed to publish processed event: %w", err)
	}

	if err := s.log.Insert(ctx, messagelog.Entry{
		EventID:     processed.ID,
		Instance:    processed.Instance,
		ChatJID:     processed.ChatJID,
		SenderJID:   processed.SenderJID,
		FromMe:      processed.FromMe,
		MessageType: processed.MessageType,
		Content:     processed.Content,
		Timestamp:   processed.Timestamp,
	}); err != nil {
		// History is best effort: the processed event is already published.
		s.logger.WarnwCtx(ctx, "Failed to persist message log entry",
			"event_id", processed.ID,
			"error", err,
		)
	}

	if s.webhooks != nil {
		if err := s.webhooks.Dispatch(ctx, processed); err != nil {
			return processed, fmt.Errorf("failed to dispatch webhooks: %w", err)
		}
	}

	return processed, nil
}

func (s *Service) transform(event models.InboundEvent) models.ProcessedEvent {
	processed := models.ProcessedEvent{
		ID:        event.ID,
		Instance:  event.Instance,
		Timestamp: event.Timestamp,
		Metadata:  event.Metadata,
	}

	if processed.ID == "" {
		processed.ID = uuid.New().String()
	}
	if processed.Timestamp.IsZero() {
		processed.Timestamp = time.Now()
	}

	if event.Envelope != nil && event.Envelope.Key != nil {
		key := event.Envelope.Key
		processed.FromMe = key.FromMe
		if key.RemoteJID != "" {
			chat := wajid.Canonicalize(key.RemoteJID)
			processed.ChatJID = chat.String()
			metrics.IncCanonicalization(chat.Server)
		}
		if key.Participant != "" {
			processed.SenderJID = wajid.Canonicalize(key.Participant).String()
		}
	}

	result := s.classifier.Classify(event.Envelope)
	processed.MessageType = result.Type
	processed.Content = result.Content

	processed.Metadata.Dispatch = &models.DispatchInfo{
		ProcessedAt: time.Now(),
		MessageType: result.Type,
	}

	return processed
}
