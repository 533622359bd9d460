package ingest

import "github.com/zapdesk/zapdesk/internal/wanet"

// SemanticType is the closed set of message shapes the pipeline understands.
// Every raw envelope maps to exactly one value; anything that does not fit
// becomes TypeUnknown and is dropped by the validator. Additions here must be
// reflected in Classify, bodyOf, and the router table — the exhaustiveness
// test keeps them in sync.
type SemanticType int

const (
	TypeUnknown SemanticType = iota
	TypeConversation
	TypeExtendedText
	TypeImage
	TypeVideo
	TypeAudio
	TypeDocument
	TypeDocumentWithCaption
	TypeSticker
	TypeLocation
	TypeLiveLocation
	TypeContact
	TypeContactsArray
	TypeButtonsResponse
	TypeListResponse
	TypeTemplateButtonReply
	TypePoll
	TypeReaction
	TypeViewOnce
	TypeAdMetaPreview
	TypeEvent
	TypeEditedMessage
	TypeProtocolMessage

	// semanticTypeCount sentinels the enum for exhaustiveness checks.
	semanticTypeCount
)

var semanticTypeNames = map[SemanticType]string{
	TypeUnknown:             "unknown",
	TypeConversation:        "conversation",
	TypeExtendedText:        "extendedTextMessage",
	TypeImage:               "imageMessage",
	TypeVideo:               "videoMessage",
	TypeAudio:               "audioMessage",
	TypeDocument:            "documentMessage",
	TypeDocumentWithCaption: "documentWithCaptionMessage",
	TypeSticker:             "stickerMessage",
	TypeLocation:            "locationMessage",
	TypeLiveLocation:        "liveLocationMessage",
	TypeContact:             "contactMessage",
	TypeContactsArray:       "contactsArrayMessage",
	TypeButtonsResponse:     "buttonsResponseMessage",
	TypeListResponse:        "listResponseMessage",
	TypeTemplateButtonReply: "templateButtonReplyMessage",
	TypePoll:                "pollCreationMessage",
	TypeReaction:            "reactionMessage",
	TypeViewOnce:            "viewOnceMessage",
	TypeAdMetaPreview:       "adMetaPreview",
	TypeEvent:               "eventMessage",
	TypeEditedMessage:       "editedMessage",
	TypeProtocolMessage:     "protocolMessage",
}

func (t SemanticType) String() string {
	if name, ok := semanticTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// AllSemanticTypes lists every value except TypeUnknown, in declaration order.
func AllSemanticTypes() []SemanticType {
	out := make([]SemanticType, 0, int(semanticTypeCount)-1)
	for t := TypeConversation; t < semanticTypeCount; t++ {
		out = append(out, t)
	}
	return out
}

// ClassifiedMessage is the ephemeral product of classification, consumed once
// by the resolver and router.
type ClassifiedMessage struct {
	Type SemanticType
	Body string
	Env  *wanet.Envelope
}
