package cel

// FilterExpressionExamples documents the filter idioms supported by webhook
// endpoints. Expressions evaluate against a processed event and must yield a
// bool.
var FilterExpressionExamples = map[string]string{
	"by_type":           `messageType == "conversation"`,
	"not_type":          `messageType != "unknown"`,
	"type_in_list":      `messageType in ["conversation", "extendedTextMessage", "image"]`,
	"media_only":        `messageType in ["image", "video", "audio", "document"]`,
	"groups_only":       `chatJid.endsWith("@g.us")`,
	"direct_chats_only": `chatJid.endsWith("@s.whatsapp.net")`,
	"inbound_only":      `!fromMe`,
	"content_contains":  `content.contains("order")`,
	"single_instance":   `instance == "main"`,
	"combined":          `!fromMe && messageType == "conversation" && chatJid.endsWith("@g.us")`,
}
