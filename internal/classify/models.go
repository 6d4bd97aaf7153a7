package classify

// Envelope is the inbound message record as relayed by the connected
// instance. At most one content variant is populated; absent fields are
// valid and simply skip that variant. Envelopes are read-only inputs and are
// never mutated.
type Envelope struct {
	Key         *Key         `json:"key,omitempty"`
	Message     *Message     `json:"message,omitempty"`
	ContextInfo *ContextInfo `json:"contextInfo,omitempty"`
}

// Key identifies the message within its chat.
type Key struct {
	ID          string `json:"id"`
	RemoteJID   string `json:"remoteJid,omitempty"`
	FromMe      bool   `json:"fromMe"`
	Participant string `json:"participant,omitempty"`
}

// Message holds the closed set of known content variants. MediaURL is an
// optional direct link injected by a storage integration; SpeechToText is an
// optional transcript attached to voice notes.
type Message struct {
	Conversation               *string              `json:"conversation,omitempty"`
	ExtendedTextMessage        *ExtendedText        `json:"extendedTextMessage,omitempty"`
	ContactMessage             *Contact             `json:"contactMessage,omitempty"`
	LocationMessage            *Location            `json:"locationMessage,omitempty"`
	ViewOnceMessageV2          *ViewOnce            `json:"viewOnceMessageV2,omitempty"`
	ListResponseMessage        *ListResponse        `json:"listResponseMessage,omitempty"`
	TemplateButtonReplyMessage *TemplateButtonReply `json:"templateButtonReplyMessage,omitempty"`
	ButtonsResponseMessage     *ButtonsResponse     `json:"buttonsResponseMessage,omitempty"`
	AudioMessage               *Media               `json:"audioMessage,omitempty"`
	ImageMessage               *Media               `json:"imageMessage,omitempty"`
	VideoMessage               *Media               `json:"videoMessage,omitempty"`
	DocumentMessage            *Media               `json:"documentMessage,omitempty"`
	DocumentWithCaptionMessage *EmbeddedDocument    `json:"documentWithCaptionMessage,omitempty"`
	SpeechToText               *string              `json:"speechToText,omitempty"`
	MediaURL                   string               `json:"mediaUrl,omitempty"`
}

type ExtendedText struct {
	Text string `json:"text"`
}

type Contact struct {
	DisplayName string `json:"displayName"`
	VCard       string `json:"vcard,omitempty"`
}

type Location struct {
	DegreesLatitude  float64 `json:"degreesLatitude"`
	DegreesLongitude float64 `json:"degreesLongitude"`
	Name             string  `json:"name,omitempty"`
}

// ViewOnce wraps a media variant that may only be opened once; the inner
// message carries the actual media.
type ViewOnce struct {
	Message *ViewOnceContent `json:"message,omitempty"`
}

type ViewOnceContent struct {
	ImageMessage *Media `json:"imageMessage,omitempty"`
	VideoMessage *Media `json:"videoMessage,omitempty"`
	AudioMessage *Media `json:"audioMessage,omitempty"`
}

type ListResponse struct {
	Title             string             `json:"title"`
	SingleSelectReply *SingleSelectReply `json:"singleSelectReply,omitempty"`
}

type SingleSelectReply struct {
	SelectedRowID string `json:"selectedRowId"`
}

type TemplateButtonReply struct {
	SelectedID string `json:"selectedId"`
}

type ButtonsResponse struct {
	SelectedButtonID string `json:"selectedButtonId"`
}

type Media struct {
	URL      string `json:"url,omitempty"`
	Caption  string `json:"caption,omitempty"`
	MimeType string `json:"mimetype,omitempty"`
}

// EmbeddedDocument wraps a document variant that carries its caption on an
// inner message.
type EmbeddedDocument struct {
	Message *EmbeddedDocumentContent `json:"message,omitempty"`
}

type EmbeddedDocumentContent struct {
	DocumentMessage *Media `json:"documentMessage,omitempty"`
}

type ContextInfo struct {
	ExternalAdReply *ExternalAdReply `json:"externalAdReply,omitempty"`
}

type ExternalAdReply struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}
