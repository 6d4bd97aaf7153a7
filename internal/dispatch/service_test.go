package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagate/internal/classify"
	"wagate/internal/logger"
	"wagate/internal/messagelog"
	"wagate/pkg/models"
)

type fakeProducer struct {
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	topic   string
	key     string
	payload interface{}
}

func (f *fakeProducer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{topic: topic, key: key, payload: payload})
	return nil
}

func (f *fakeProducer) Close() error { return nil }

type fakeLog struct {
	entries []messagelog.Entry
	err     error
}

func (f *fakeLog) Insert(ctx context.Context, entry messagelog.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLog) ListByChat(ctx context.Context, instance, chatJID string, limit int) ([]messagelog.Entry, error) {
	return f.entries, nil
}

func (f *fakeLog) ListByInstance(ctx context.Context, instance string, limit int) ([]messagelog.Entry, error) {
	return f.entries, nil
}

type fakeDispatcher struct {
	events []models.ProcessedEvent
	err    error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, event models.ProcessedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func strPtr(s string) *string { return &s }

func newTestEvent() models.InboundEvent {
	return models.InboundEvent{
		ID:        "evt-1",
		Instance:  "main",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Envelope: &classify.Envelope{
			Key: &classify.Key{
				ID:        "msg-1",
				RemoteJID: "+52 1 55 1234 5678",
				FromMe:    false,
			},
			Message: &classify.Message{
				Conversation: strPtr("hello"),
			},
		},
	}
}

func TestProcessTransformsEvent(t *testing.T) {
	producer := &fakeProducer{}
	log := &fakeLog{}
	dispatcher := &fakeDispatcher{}
	svc := NewService(classify.Classifier{}, producer, log, dispatcher, "processed_events", logger.NopLogger())

	processed, err := svc.Process(context.Background(), newTestEvent())
	require.NoError(t, err)

	assert.Equal(t, "evt-1", processed.ID)
	assert.Equal(t, "main", processed.Instance)
	assert.Equal(t, "525512345678@s.whatsapp.net", processed.ChatJID)
	assert.Equal(t, "conversation", processed.MessageType)
	assert.Equal(t, "hello", processed.Content)
	assert.False(t, processed.FromMe)
	require.NotNil(t, processed.Metadata.Dispatch)
	assert.Equal(t, "conversation", processed.Metadata.Dispatch.MessageType)

	require.Len(t, producer.published, 1)
	assert.Equal(t, "processed_events", producer.published[0].topic)
	assert.Equal(t, "evt-1", producer.published[0].key)

	require.Len(t, log.entries, 1)
	assert.Equal(t, "evt-1", log.entries[0].EventID)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, processed.ID, dispatcher.events[0].ID)
}

func TestProcessCanonicalizesParticipant(t *testing.T) {
	event := newTestEvent()
	event.Envelope.Key.RemoteJID = "123456789012345678-1"
	event.Envelope.Key.Participant = "55 (21) 9 9999-8888"

	svc := NewService(classify.Classifier{}, &fakeProducer{}, &fakeLog{}, &fakeDispatcher{}, "processed_events", logger.NopLogger())

	processed, err := svc.Process(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678-1@g.us", processed.ChatJID)
	assert.Equal(t, "5521999998888@s.whatsapp.net", processed.SenderJID)
}

func TestProcessHandlesNilEnvelope(t *testing.T) {
	producer := &fakeProducer{}
	svc := NewService(classify.Classifier{}, producer, &fakeLog{}, &fakeDispatcher{}, "processed_events", logger.NopLogger())

	processed, err := svc.Process(context.Background(), models.InboundEvent{Instance: "main"})
	require.NoError(t, err)

	assert.NotEmpty(t, processed.ID)
	assert.False(t, processed.Timestamp.IsZero())
	assert.Empty(t, processed.ChatJID)
	assert.Equal(t, "unknown", processed.MessageType)
	require.Len(t, producer.published, 1)
}

func TestProcessHandlesEnvelopeWithoutKey(t *testing.T) {
	producer := &fakeProducer{}
	svc := NewService(classify.Classifier{}, producer, &fakeLog{}, &fakeDispatcher{}, "processed_events", logger.NopLogger())

	raw := []byte(`{"instance":"main","envelope":{"message":{"conversation":"hi"}}}`)
	var event models.InboundEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	require.Nil(t, event.Envelope.Key)

	processed, err := svc.Process(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, "conversation", processed.MessageType)
	assert.Equal(t, "hi", processed.Content)
	assert.False(t, processed.FromMe)
	assert.Empty(t, processed.ChatJID)
	require.Len(t, producer.published, 1)
}

func TestProcessFailsWhenPublishFails(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	log := &fakeLog{}
	svc := NewService(classify.Classifier{}, producer, log, &fakeDispatcher{}, "processed_events", logger.NopLogger())

	_, err := svc.Process(context.Background(), newTestEvent())
	require.Error(t, err)
	assert.Empty(t, log.entries)
}

func TestProcessContinuesWhenLogFails(t *testing.T) {
	producer := &fakeProducer{}
	log := &fakeLog{err: errors.New("mongo down")}
	dispatcher := &fakeDispatcher{}
	svc := NewService(classify.Classifier{}, producer, log, dispatcher, "processed_events", logger.NopLogger())

	_, err := svc.Process(context.Background(), newTestEvent())
	require.NoError(t, err)
	assert.Len(t, producer.published, 1)
	assert.Len(t, dispatcher.events, 1)
}

func TestHandleReportsDispatchErrors(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("postgres down")}
	svc := NewService(classify.Classifier{}, &fakeProducer{}, &fakeLog{}, dispatcher, "processed_events", logger.NopLogger())

	err := svc.Handle(context.Background(), newTestEvent())
	assert.Error(t, err)
}
