package classify

import (
	"strconv"
	"strings"
)

// Variant tags. The declaration order here mirrors the classification
// priority; TypeUnknown is the sentinel for envelopes with no populated
// variant.
const (
	TypeConversation        = "conversation"
	TypeExtendedText        = "extendedTextMessage"
	TypeContact             = "contactMessage"
	TypeLocation            = "locationMessage"
	TypeViewOnce            = "viewOnceMessageV2"
	TypeListResponse        = "listResponseMessage"
	TypeResponseRowID       = "responseRowId"
	TypeTemplateButtonReply = "templateButtonReplyMessage"
	TypeAudio               = "audioMessage"
	TypeImage               = "imageMessage"
	TypeVideo               = "videoMessage"
	TypeDocument            = "documentMessage"
	TypeDocumentWithCaption = "documentWithCaptionMessage"
	TypeUnknown             = "unknown"
)

// Result is the classified content of one envelope: exactly one variant tag
// plus its extracted content string. Content is empty when Type is
// TypeUnknown.
type Result struct {
	Type    string `json:"messageType"`
	Content string `json:"content,omitempty"`
}

// Classifier extracts the single semantic content of a message envelope.
// The zero value is ready to use.
type Classifier struct {
	// PreferMediaURL selects the envelope's direct media URL over the key id
	// as the media identifier when a storage integration serves media by URL.
	PreferMediaURL bool
}

type variant struct {
	kind  string
	value *string
}

// Classify inspects the envelope and picks the first populated variant in
// the fixed priority order. It is total: a nil or empty envelope yields the
// unknown sentinel, never an error. The priority order must not be
// reordered; it decides which variant wins when several are populated at
// once.
func (c Classifier) Classify(env *Envelope) Result {
	if env == nil || env.Message == nil {
		return Result{Type: TypeUnknown}
	}
	m := env.Message

	mediaID := ""
	if env.Key != nil {
		mediaID = env.Key.ID
	}
	if c.PreferMediaURL && m.MediaURL != "" {
		mediaID = m.MediaURL
	}

	variants := []variant{
		{TypeConversation, m.Conversation},
		{TypeExtendedText, extendedText(m.ExtendedTextMessage)},
		{TypeContact, contactName(m.ContactMessage)},
		{TypeLocation, locationLatitude(m.LocationMessage)},
		{TypeViewOnce, viewOnceURL(m.ViewOnceMessageV2)},
		{TypeListResponse, listTitle(m.ListResponseMessage)},
		{TypeResponseRowID, selectedRowID(m.ListResponseMessage)},
		{TypeTemplateButtonReply, buttonReplyID(m.TemplateButtonReplyMessage, m.ButtonsResponseMessage)},
		{TypeAudio, audioContent(m, mediaID)},
		{TypeImage, mediaRef(TypeImage, m.ImageMessage, mediaID)},
		{TypeVideo, mediaRef(TypeVideo, m.VideoMessage, mediaID)},
		{TypeDocument, mediaRef(TypeDocument, m.DocumentMessage, mediaID)},
		{TypeDocumentWithCaption, embeddedDocumentRef(m.DocumentWithCaptionMessage, mediaID)},
	}

	adReply := adReplyBody(env.ContextInfo)

	for _, v := range variants {
		if v.value == nil {
			continue
		}
		content := *v.value
		if adReply != "" {
			content = strings.TrimSpace(content + "\n" + adReply)
		}
		return Result{Type: v.kind, Content: content}
	}
	return Result{Type: TypeUnknown}
}

func str(s string) *string {
	return &s
}

func extendedText(m *ExtendedText) *string {
	if m == nil {
		return nil
	}
	return str(m.Text)
}

func contactName(m *Contact) *string {
	if m == nil {
		return nil
	}
	return str(m.DisplayName)
}

func locationLatitude(m *Location) *string {
	if m == nil {
		return nil
	}
	return str(strconv.FormatFloat(m.DegreesLatitude, 'f', -1, 64))
}

// View-once media resolves to the inner variant's URL, probing image, video
// and audio in that order.
func viewOnceURL(m *ViewOnce) *string {
	if m == nil || m.Message == nil {
		return nil
	}
	switch {
	case m.Message.ImageMessage != nil:
		return str(m.Message.ImageMessage.URL)
	case m.Message.VideoMessage != nil:
		return str(m.Message.VideoMessage.URL)
	case m.Message.AudioMessage != nil:
		return str(m.Message.AudioMessage.URL)
	}
	return nil
}

func listTitle(m *ListResponse) *string {
	if m == nil {
		return nil
	}
	return str(m.Title)
}

func selectedRowID(m *ListResponse) *string {
	if m == nil || m.SingleSelectReply == nil {
		return nil
	}
	return str(m.SingleSelectReply.SelectedRowID)
}

// Template replies fall back to the generic button-reply id when the
// template-specific field is absent.
func buttonReplyID(t *TemplateButtonReply, b *ButtonsResponse) *string {
	if t != nil {
		return str(t.SelectedID)
	}
	if b != nil {
		return str(b.SelectedButtonID)
	}
	return nil
}

// Voice notes prefer their transcript; otherwise they classify as a tagged
// audio reference.
func audioContent(m *Message, mediaID string) *string {
	if m.SpeechToText != nil {
		return m.SpeechToText
	}
	if m.AudioMessage != nil {
		return str(TypeAudio + "|" + mediaID)
	}
	return nil
}

func mediaRef(kind string, m *Media, mediaID string) *string {
	if m == nil {
		return nil
	}
	return str(kind + "|" + mediaID + captionSuffix(m.Caption))
}

func embeddedDocumentRef(m *EmbeddedDocument, mediaID string) *string {
	if m == nil || m.Message == nil || m.Message.DocumentMessage == nil {
		return nil
	}
	return str(TypeDocumentWithCaption + "|" + mediaID + captionSuffix(m.Message.DocumentMessage.Caption))
}

func captionSuffix(caption string) string {
	if caption == "" {
		return ""
	}
	return "|" + caption
}

func adReplyBody(ci *ContextInfo) string {
	if ci == nil || ci.ExternalAdReply == nil {
		return ""
	}
	return ci.ExternalAdReply.Body
}
