package e2e

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagate/internal/classify"
	"wagate/pkg/models"
)

const (
	kafkaBroker      = "localhost:29092"
	inboundTopic     = "inbound_events"
	processedTopic   = "processed_events"
	eventWaitTimeout = 30 * time.Second
)

func TestPipelineClassifiesConversation(t *testing.T) {
	text := "pipeline hello"
	event := models.InboundEvent{
		ID:        uuid.New().String(),
		Instance:  "e2e-pipeline",
		Timestamp: time.Now(),
		Envelope: &classify.Envelope{
			Key: &classify.Key{
				ID:        uuid.New().String(),
				RemoteJID: "+55 (11) 9 8888-7777",
			},
			Message: &classify.Message{Conversation: &text},
		},
	}

	require.NoError(t, sendEventToKafka(t, event))

	processed := waitForProcessedEvent(t, event.ID)
	require.NotNil(t, processed, "event should be processed")

	assert.Equal(t, "e2e-pipeline", processed.Instance)
	assert.Equal(t, "5511988887777@s.whatsapp.net", processed.ChatJID)
	assert.Equal(t, "conversation", processed.MessageType)
	assert.Equal(t, text, processed.Content)
	assert.False(t, processed.FromMe)
	require.NotNil(t, processed.Metadata.Dispatch)
	assert.Equal(t, "conversation", processed.Metadata.Dispatch.MessageType)
}

func TestPipelineClassifiesMediaWithCaption(t *testing.T) {
	event := models.InboundEvent{
		ID:        uuid.New().String(),
		Instance:  "e2e-pipeline",
		Timestamp: time.Now(),
		Envelope: &classify.Envelope{
			Key: &classify.Key{
				ID:        "media-key-1",
				RemoteJID: "123456789012345678-1@g.us",
			},
			Message: &classify.Message{
				ImageMessage: &classify.Media{URL: "https://cdn.example.com/p.jpg", Caption: "look"},
			},
		},
	}

	require.NoError(t, sendEventToKafka(t, event))

	processed := waitForProcessedEvent(t, event.ID)
	require.NotNil(t, processed)

	assert.Equal(t, "123456789012345678-1@g.us", processed.ChatJID)
	assert.Equal(t, "image", processed.MessageType)
	assert.Equal(t, "image|media-key-1|look", processed.Content)
}

func TestPipelineDegradesUnknownEnvelope(t *testing.T) {
	event := models.InboundEvent{
		ID:        uuid.New().String(),
		Instance:  "e2e-pipeline",
		Timestamp: time.Now(),
		Envelope:  &classify.Envelope{Key: &classify.Key{ID: "k", RemoteJID: "5511888887777"}},
	}

	require.NoError(t, sendEventToKafka(t, event))

	processed := waitForProcessedEvent(t, event.ID)
	require.NotNil(t, processed, "unknown envelopes still flow through")
	assert.Equal(t, "unknown", processed.MessageType)
}

func sendEventToKafka(t *testing.T, event models.InboundEvent) error {
	t.Helper()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(kafkaBroker),
		Topic:    inboundTopic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Instance),
		Value: payload,
	})
}

func waitForProcessedEvent(t *testing.T, eventID string) *models.ProcessedEvent {
	t.Helper()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{kafkaBroker},
		Topic:    processedTopic,
		GroupID:  "e2e-" + uuid.New().String(),
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), eventWaitTimeout)
	defer cancel()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return nil
		}

		var processed models.ProcessedEvent
		if err := json.Unmarshal(msg.Value, &processed); err != nil {
			continue
		}
		if processed.ID == eventID {
			return &processed
		}
	}
}
