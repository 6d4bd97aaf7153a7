package gateway

import "wagate/internal/fields"

// Request schemas for the send and delete endpoints. Validation failures are
// rendered description-first, so every constraint a client can trip over
// carries a human-readable description.

var sendTextSchema = fields.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"number", "text"},
	"properties": map[string]interface{}{
		"number": map[string]interface{}{
			"type":        "string",
			"minLength":   1,
			"description": "number is required and must be the recipient phone number or group id",
		},
		"text": map[string]interface{}{
			"type":        "string",
			"minLength":   1,
			"description": "text is required and must be a non-empty string",
		},
	},
})

var sendMediaSchema = fields.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"number", "mediaUrl", "mediaType"},
	"properties": map[string]interface{}{
		"number": map[string]interface{}{
			"type":        "string",
			"minLength":   1,
			"description": "number is required and must be the recipient phone number or group id",
		},
		"mediaUrl": map[string]interface{}{
			"type":        "string",
			"minLength":   1,
			"description": "mediaUrl is required and must be a reachable media location",
		},
		"mediaType": map[string]interface{}{
			"type":        "string",
			"enum":        []interface{}{"image", "video", "audio", "document"},
			"description": "mediaType is required and must be one of image, video, audio, document",
		},
		"caption": map[string]interface{}{
			"type":        "string",
			"description": "caption must be a string",
		},
	},
})

var deleteMessageSchema = fields.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"id"},
	"properties": map[string]interface{}{
		"id": map[string]interface{}{
			"type":        "string",
			"minLength":   1,
			"description": "id is required and must identify the message to delete",
		},
		"number": map[string]interface{}{
			"type":        "string",
			"description": "number must be the chat the message belongs to",
		},
	},
})

var contactCheckSchema = fields.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"numbers"},
	"properties": map[string]interface{}{
		"numbers": map[string]interface{}{
			"type":        "array",
			"minItems":    1,
			"items":       map[string]interface{}{"type": "string"},
			"description": "numbers is required and must be a non-empty list of strings",
		},
	},
})
