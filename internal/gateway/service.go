package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wagate/internal/broker"
	"wagate/internal/classify"
	"wagate/internal/constants"
	"wagate/internal/fields"
	"wagate/internal/logger"
	"wagate/internal/messagelog"
	"wagate/internal/session"
	"wagate/internal/wajid"
	pkgerrors "wagate/pkg/errors"
	"wagate/pkg/logging"
	"wagate/pkg/metrics"
	"wagate/pkg/models"
)

// Service validates merged request records, canonicalizes recipients and
// hands accepted sends to the dispatch pipeline as inbound events with
// fromMe set. There is no wire protocol behind it; the pipeline is the
// outbound path.
type Service struct {
	sessions session.Registry
	producer broker.Producer
	history  messagelog.Repository
	topic    string
	logger   logger.Logger
}

func NewService(sessions session.Registry, producer broker.Producer, history messagelog.Repository, inboundTopic string, log logger.Logger) *Service {
	if inboundTopic == "" {
		inboundTopic = constants.DefaultInboundTopic
	}
	return &Service{
		sessions: sessions,
		producer: producer,
		history:  history,
		topic:    inboundTopic,
		logger:   log,
	}
}

func (s *Service) SendText(ctx context.Context, instance string, rec fields.Record) (*SendResponse, error) {
	if err := sendTextSchema.Validate(rec); err != nil {
		return nil, pkgerrors.ErrValidation.WithDetail("message", err.Error())
	}
	if err := s.requireConnected(ctx, instance); err != nil {
		return nil, err
	}

	text := stringField(rec, "text")
	recipient := s.canonicalize(stringField(rec, "number"))
	message := &classify.Message{Conversation: &text}

	return s.publishSend(ctx, instance, recipient, message)
}

func (s *Service) SendMedia(ctx context.Context, instance string, rec fields.Record) (*SendResponse, error) {
	if err := sendMediaSchema.Validate(rec); err != nil {
		return nil, pkgerrors.ErrValidation.WithDetail("message", err.Error())
	}
	if err := s.requireConnected(ctx, instance); err != nil {
		return nil, err
	}

	recipient := s.canonicalize(stringField(rec, "number"))
	media := &classify.Media{
		URL:     stringField(rec, "mediaUrl"),
		Caption: stringField(rec, "caption"),
	}
	message := &classify.Message{MediaURL: media.URL}
	switch stringField(rec, "mediaType") {
	case "image":
		message.ImageMessage = media
	case "video":
		message.VideoMessage = media
	case "audio":
		message.AudioMessage = media
	case "document":
		message.DocumentMessage = media
	}

	return s.publishSend(ctx, instance, recipient, message)
}

// DeleteMessage accepts a deletion command and forwards it to the pipeline.
// The envelope carries only the key of the message being removed.
func (s *Service) DeleteMessage(ctx context.Context, instance string, rec fields.Record) (*DeleteResponse, error) {
	if err := deleteMessageSchema.Validate(rec); err != nil {
		return nil, pkgerrors.ErrValidation.WithDetail("message", err.Error())
	}
	if err := s.requireConnected(ctx, instance); err != nil {
		return nil, err
	}

	id := stringField(rec, "id")
	key := &classify.Key{ID: id, FromMe: true}
	if number := stringField(rec, "number"); number != "" {
		key.RemoteJID = s.canonicalize(number).String()
	}

	event := models.InboundEvent{
		ID:        uuid.New().String(),
		Instance:  instance,
		Timestamp: time.Now(),
		Envelope:  &classify.Envelope{Key: key},
		Metadata: models.Metadata{
			TraceID: logging.GetTraceID(ctx),
			Extra:   map[string]interface{}{"action": "delete"},
		},
	}
	if err := s.producer.Publish(ctx, s.topic, instance, event); err != nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.InfowCtx(ctx, "Message deletion queued", "instance", instance, "message_id", id)
	return &DeleteResponse{ID: id, Status: "queued"}, nil
}

// CheckContacts canonicalizes raw identifiers. The operation is total, so
// there is no per-number error path.
func (s *Service) CheckContacts(ctx context.Context, rec fields.Record) ([]ContactCheckResult, error) {
	if err := contactCheckSchema.Validate(rec); err != nil {
		return nil, pkgerrors.ErrValidation.WithDetail("message", err.Error())
	}

	raw, _ := rec["numbers"].([]interface{})
	results := make([]ContactCheckResult, 0, len(raw))
	for _, item := range raw {
		query, _ := item.(string)
		jid := s.canonicalize(query)
		results = append(results, ContactCheckResult{
			Query:   query,
			JID:     jid.String(),
			IsGroup: jid.IsGroup(),
		})
	}
	return results, nil
}

func (s *Service) Status(ctx context.Context, instance string) (*session.State, error) {
	return s.sessions.GetState(ctx, instance)
}

func (s *Service) Connect(ctx context.Context, instance, jid string) (*InstanceActionResponse, error) {
	state := session.State{
		Instance:    instance,
		Status:      constants.InstanceStateConnected,
		JID:         jid,
		ConnectedAt: time.Now(),
	}
	if err := s.sessions.SetState(ctx, state); err != nil {
		return nil, err
	}
	s.logger.InfowCtx(ctx, "Instance connected", "instance", instance)
	return &InstanceActionResponse{Instance: instance, Status: state.Status}, nil
}

func (s *Service) Disconnect(ctx context.Context, instance string) (*InstanceActionResponse, error) {
	state := session.State{
		Instance: instance,
		Status:   constants.InstanceStateDisconnected,
	}
	if err := s.sessions.SetState(ctx, state); err != nil {
		return nil, err
	}
	s.logger.InfowCtx(ctx, "Instance disconnected", "instance", instance)
	return &InstanceActionResponse{Instance: instance, Status: state.Status}, nil
}

// History returns the newest classified messages for an instance, optionally
// scoped to one chat.
func (s *Service) History(ctx context.Context, instance, chatJID string, limit int) ([]messagelog.Entry, error) {
	if s.history == nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithDetail("message", "message log storage is not configured")
	}
	if chatJID != "" {
		return s.history.ListByChat(ctx, instance, chatJID, limit)
	}
	return s.history.ListByInstance(ctx, instance, limit)
}

func (s *Service) publishSend(ctx context.Context, instance string, recipient wajid.JID, message *classify.Message) (*SendResponse, error) {
	event := models.InboundEvent{
		ID:        uuid.New().String(),
		Instance:  instance,
		Timestamp: time.Now(),
		Envelope: &classify.Envelope{
			Key: &classify.Key{
				ID:        uuid.New().String(),
				RemoteJID: recipient.String(),
				FromMe:    true,
			},
			Message: message,
		},
		Metadata: models.Metadata{TraceID: logging.GetTraceID(ctx)},
	}

	if err := s.producer.Publish(ctx, s.topic, instance, event); err != nil {
		return nil, pkgerrors.ErrServiceUnavailable.WithCause(err)
	}

	s.logger.InfowCtx(ctx, "Outbound message queued",
		"instance", instance,
		"recipient", recipient.String(),
		"event_id", event.ID)
	return &SendResponse{ID: event.ID, Recipient: recipient.String(), Status: "queued"}, nil
}

func (s *Service) requireConnected(ctx context.Context, instance string) error {
	state, err := s.sessions.GetState(ctx, instance)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.ErrInstanceNotConnected.WithDetail("instance", instance)
		}
		return err
	}
	if state.Status != constants.InstanceStateConnected {
		return pkgerrors.ErrInstanceNotConnected.WithDetail("instance", instance)
	}
	return nil
}

func (s *Service) canonicalize(raw string) wajid.JID {
	jid := wajid.Canonicalize(raw)
	metrics.IncCanonicalization(jid.Server)
	return jid
}

func stringField(rec fields.Record, key string) string {
	v, _ := rec[key].(string)
	return v
}
