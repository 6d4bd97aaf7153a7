package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendTextSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Compile(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"number": map[string]interface{}{
				"type":        "string",
				"minLength":   1,
				"description": "number is required and must be a non-empty string",
			},
			"text": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
			"options": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"delay": map[string]interface{}{
						"type":        "integer",
						"description": "delay must be an integer number of milliseconds",
					},
				},
			},
		},
		"required": []interface{}{"number", "text"},
	})
	require.NoError(t, err)
	return s
}

func TestValidateSuccess(t *testing.T) {
	s := sendTextSchema(t)

	err := s.Validate(Record{"number": "5511987654321", "text": "hi"})
	assert.NoError(t, err)
}

func TestValidateRequiredUsesDescription(t *testing.T) {
	s := sendTextSchema(t)

	err := s.Validate(Record{"text": "hi"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Messages, 1)
	assert.Equal(t, "number is required and must be a non-empty string", verr.Messages[0])
}

func TestValidateDerivedMessageWithoutDescription(t *testing.T) {
	s := sendTextSchema(t)

	err := s.Validate(Record{"number": "5511987654321"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Messages, 1)
	// No description on "text": the derived message keeps the field name but
	// not the instance-path prefix.
	assert.Contains(t, verr.Messages[0], "text")
	assert.NotContains(t, verr.Messages[0], "(root)")
}

func TestValidateAggregatesAllFailures(t *testing.T) {
	s := sendTextSchema(t)

	err := s.Validate(Record{})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Messages, 2)
	assert.Equal(t, strings.Join(verr.Messages, "\n"), verr.Error())
	assert.Contains(t, verr.Messages, "number is required and must be a non-empty string")
}

func TestValidateNestedDescription(t *testing.T) {
	s := sendTextSchema(t)

	err := s.Validate(Record{
		"number":  "5511987654321",
		"text":    "hi",
		"options": map[string]interface{}{"delay": "soon"},
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Messages, 1)
	assert.Equal(t, "delay must be an integer number of milliseconds", verr.Messages[0])
}

func TestValidateTypeMismatch(t *testing.T) {
	s := sendTextSchema(t)

	err := s.Validate(Record{"number": "5511987654321", "text": 7})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Messages, 1)
	assert.Contains(t, verr.Messages[0], "text")
}

func TestValidateWithMergedRecord(t *testing.T) {
	s := sendTextSchema(t)

	// Deletion-style precedence: query overrides body.
	merged := Merge(
		Source{"number": "bad", "text": "hi"},
		Source{"number": "5511987654321"},
	)
	assert.NoError(t, s.Validate(merged))
}

func TestCompileRejectsBrokenSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"x": map[string]interface{}{"type": 12}},
	})
	assert.Error(t, err)
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"x": map[string]interface{}{"type": 12}},
		})
	})
}
