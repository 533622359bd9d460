package wanet

import "time"

// MessageKey identifies a message within a chat.
type MessageKey struct {
	RemoteJID   string `json:"remoteJid"`
	FromMe      bool   `json:"fromMe"`
	ID          string `json:"id"`
	Participant string `json:"participant,omitempty"`
}

// StubType marks protocol-level system notifications that carry no user content.
type StubType int

const (
	StubNone StubType = iota
	StubRevoke
	StubCiphertext
	StubE2EIdentityChanged
	StubE2EEncryptionKeyChanged
	StubGroupCreate
	StubGroupSubjectChange
	StubGroupParticipantAdd
	StubGroupParticipantRemove
)

// DisconnectCode is the numeric reason attached to a connection-close event.
type DisconnectCode int

const (
	CodeLoggedOut           DisconnectCode = 401
	CodeTimedOut            DisconnectCode = 408
	CodeConnectionLost      DisconnectCode = 409
	CodeMultideviceMismatch DisconnectCode = 411
	CodeConnectionClosed    DisconnectCode = 428
	CodeConnectionReplaced  DisconnectCode = 440
	CodeBadSession          DisconnectCode = 500
	CodeRestartRequired     DisconnectCode = 515
)

// Envelope is one raw inbound message as delivered by the network client.
type Envelope struct {
	Key         MessageKey      `json:"key"`
	PushName    string          `json:"pushName,omitempty"`
	Participant string          `json:"participant,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Broadcast   bool            `json:"broadcast,omitempty"`
	StubType    StubType        `json:"stubType,omitempty"`
	Content     *MessageContent `json:"message,omitempty"`
}

// MessageContent holds at most one populated content variant.
type MessageContent struct {
	Conversation        *string                     `json:"conversation,omitempty"`
	ExtendedText        *ExtendedTextContent        `json:"extendedTextMessage,omitempty"`
	Image               *ImageContent               `json:"imageMessage,omitempty"`
	Video               *VideoContent               `json:"videoMessage,omitempty"`
	Audio               *AudioContent               `json:"audioMessage,omitempty"`
	Document            *DocumentContent            `json:"documentMessage,omitempty"`
	DocumentWithCaption *WrappedContent             `json:"documentWithCaptionMessage,omitempty"`
	Sticker             *StickerContent             `json:"stickerMessage,omitempty"`
	Location            *LocationContent            `json:"locationMessage,omitempty"`
	LiveLocation        *LiveLocationContent        `json:"liveLocationMessage,omitempty"`
	Contact             *ContactContent             `json:"contactMessage,omitempty"`
	ContactsArray       *ContactsArrayContent       `json:"contactsArrayMessage,omitempty"`
	ButtonsResponse     *ButtonsResponseContent     `json:"buttonsResponseMessage,omitempty"`
	ListResponse        *ListResponseContent        `json:"listResponseMessage,omitempty"`
	TemplateButtonReply *TemplateButtonReplyContent `json:"templateButtonReplyMessage,omitempty"`
	Poll                *PollContent                `json:"pollCreationMessage,omitempty"`
	Reaction            *ReactionContent            `json:"reactionMessage,omitempty"`
	ViewOnce            *WrappedContent             `json:"viewOnceMessage,omitempty"`
	Protocol            *ProtocolContent            `json:"protocolMessage,omitempty"`
	Event               *EventContent               `json:"eventMessage,omitempty"`
}

type ExtendedTextContent struct {
	Text        string       `json:"text"`
	ContextInfo *ContextInfo `json:"contextInfo,omitempty"`
}

type ContextInfo struct {
	StanzaID        string           `json:"stanzaId,omitempty"`
	Participant     string           `json:"participant,omitempty"`
	QuotedMessage   *MessageContent  `json:"quotedMessage,omitempty"`
	ExternalAdReply *ExternalAdReply `json:"externalAdReply,omitempty"`
}

// ExternalAdReply is the ad-preview context wrapper attached to messages
// originating from a click-to-chat advertisement.
type ExternalAdReply struct {
	Title        string `json:"title,omitempty"`
	Body         string `json:"body,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	SourceURL    string `json:"sourceUrl,omitempty"`
}

type ImageContent struct {
	Caption   string `json:"caption,omitempty"`
	Mimetype  string `json:"mimetype,omitempty"`
	MediaKey  []byte `json:"mediaKey,omitempty"`
	DirectURL string `json:"directPath,omitempty"`
}

type VideoContent struct {
	Caption   string `json:"caption,omitempty"`
	Mimetype  string `json:"mimetype,omitempty"`
	MediaKey  []byte `json:"mediaKey,omitempty"`
	DirectURL string `json:"directPath,omitempty"`
}

type AudioContent struct {
	PTT       bool   `json:"ptt,omitempty"`
	Mimetype  string `json:"mimetype,omitempty"`
	Seconds   int    `json:"seconds,omitempty"`
	MediaKey  []byte `json:"mediaKey,omitempty"`
	DirectURL string `json:"directPath,omitempty"`
}

type DocumentContent struct {
	FileName  string `json:"fileName,omitempty"`
	Caption   string `json:"caption,omitempty"`
	Mimetype  string `json:"mimetype,omitempty"`
	MediaKey  []byte `json:"mediaKey,omitempty"`
	DirectURL string `json:"directPath,omitempty"`
}

type StickerContent struct {
	Mimetype  string `json:"mimetype,omitempty"`
	MediaKey  []byte `json:"mediaKey,omitempty"`
	DirectURL string `json:"directPath,omitempty"`
}

type LocationContent struct {
	Latitude     float64 `json:"degreesLatitude"`
	Longitude    float64 `json:"degreesLongitude"`
	ThumbnailB64 string  `json:"jpegThumbnail,omitempty"`
}

type LiveLocationContent struct {
	Latitude  float64 `json:"degreesLatitude"`
	Longitude float64 `json:"degreesLongitude"`
	Caption   string  `json:"caption,omitempty"`
}

type ContactContent struct {
	DisplayName string `json:"displayName,omitempty"`
	VCard       string `json:"vcard,omitempty"`
}

type ContactsArrayContent struct {
	DisplayName string           `json:"displayName,omitempty"`
	Contacts    []ContactContent `json:"contacts,omitempty"`
}

type ButtonsResponseContent struct {
	SelectedButtonID    string `json:"selectedButtonId,omitempty"`
	SelectedDisplayText string `json:"selectedDisplayText,omitempty"`
}

type ListResponseContent struct {
	Title         string `json:"title,omitempty"`
	SelectedRowID string `json:"selectedRowId,omitempty"`
	Description   string `json:"description,omitempty"`
}

type TemplateButtonReplyContent struct {
	SelectedID          string `json:"selectedId,omitempty"`
	SelectedDisplayText string `json:"selectedDisplayText,omitempty"`
}

type PollContent struct {
	Name    string   `json:"name"`
	Options []string `json:"options,omitempty"`
}

type ReactionContent struct {
	Key  MessageKey `json:"key"`
	Text string     `json:"text,omitempty"`
}

// WrappedContent is a future-proof wrapper around another message payload
// (view-once, document-with-caption, edits).
type WrappedContent struct {
	Message *MessageContent `json:"message,omitempty"`
}

// ProtocolType distinguishes protocol message payloads.
type ProtocolType int

const (
	ProtocolUnknown ProtocolType = iota
	ProtocolRevoke
	ProtocolEdit
	ProtocolEphemeralSetting
)

type ProtocolContent struct {
	Type          ProtocolType    `json:"type"`
	Key           MessageKey      `json:"key"`
	EditedMessage *MessageContent `json:"editedMessage,omitempty"`
}

type EventContent struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
