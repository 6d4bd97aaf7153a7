package cel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagate/pkg/models"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateFilterExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid bool expression",
			expr:      `messageType == "conversation"`,
			wantError: false,
		},
		{
			name:      "valid contains",
			expr:      `chatJid.contains("@g.us")`,
			wantError: false,
		},
		{
			name:      "non-bool expression",
			expr:      `content`,
			wantError: true,
		},
		{
			name:      "invalid expression",
			expr:      `invalid syntax here!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `undefinedVar == "test"`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateFilterExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluateFilter(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	event := models.ProcessedEvent{
		ID:          "evt-1",
		Instance:    "main",
		Timestamp:   time.Now(),
		ChatJID:     "5215512345678@s.whatsapp.net",
		SenderJID:   "5215512345678@s.whatsapp.net",
		FromMe:      false,
		MessageType: "conversation",
		Content:     "hello there",
		Metadata: models.Metadata{
			TraceID: "trace-1",
		},
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{
			name: "match on message type",
			expr: `messageType == "conversation"`,
			want: true,
		},
		{
			name: "no match on group chats",
			expr: `chatJid.endsWith("@g.us")`,
			want: false,
		},
		{
			name: "content contains",
			expr: `content.contains("hello")`,
			want: true,
		},
		{
			name: "skip own messages",
			expr: `!fromMe`,
			want: true,
		},
		{
			name: "combined expression",
			expr: `instance == "main" && messageType in ["conversation", "extendedTextMessage"]`,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateFilter(context.Background(), tt.expr, event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateFilterErrors(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.EvaluateFilter(context.Background(), `content`, models.ProcessedEvent{})
	assert.Error(t, err)

	_, err = eval.EvaluateFilter(context.Background(), `nope ==`, models.ProcessedEvent{})
	assert.Error(t, err)
}

func TestCompileExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	program, err := eval.CompileExpression(`messageType == "imageMessage"`)
	require.NoError(t, err)
	assert.NotNil(t, program)

	_, err = eval.CompileExpression(`bad ==`)
	assert.Error(t, err)
}
