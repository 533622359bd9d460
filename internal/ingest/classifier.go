package ingest

import (
	"fmt"
	"strings"

	"github.com/zapdesk/zapdesk/internal/wanet"
)

// Classify maps a raw envelope to exactly one semantic type and its textual
// body. Structural markers take precedence over generic content detection:
// an ad-preview context wrapper or a view-once wrapper short-circuits before
// the per-field lookup.
func Classify(env *wanet.Envelope) ClassifiedMessage {
	t := typeOf(env)
	return ClassifiedMessage{
		Type: t,
		Body: bodyOf(t, env.Content),
		Env:  env,
	}
}

func typeOf(env *wanet.Envelope) SemanticType {
	c := env.Content
	if c == nil {
		return TypeUnknown
	}
	if c.ExtendedText != nil && c.ExtendedText.ContextInfo != nil &&
		c.ExtendedText.ContextInfo.ExternalAdReply != nil {
		return TypeAdMetaPreview
	}
	if c.ViewOnce != nil {
		return TypeViewOnce
	}
	switch {
	case c.Conversation != nil:
		return TypeConversation
	case c.ExtendedText != nil:
		return TypeExtendedText
	case c.Image != nil:
		return TypeImage
	case c.Video != nil:
		return TypeVideo
	case c.Audio != nil:
		return TypeAudio
	case c.DocumentWithCaption != nil:
		return TypeDocumentWithCaption
	case c.Document != nil:
		return TypeDocument
	case c.Sticker != nil:
		return TypeSticker
	case c.Location != nil:
		return TypeLocation
	case c.LiveLocation != nil:
		return TypeLiveLocation
	case c.ContactsArray != nil:
		return TypeContactsArray
	case c.Contact != nil:
		return TypeContact
	case c.ButtonsResponse != nil:
		return TypeButtonsResponse
	case c.ListResponse != nil:
		return TypeListResponse
	case c.TemplateButtonReply != nil:
		return TypeTemplateButtonReply
	case c.Poll != nil:
		return TypePoll
	case c.Reaction != nil:
		return TypeReaction
	case c.Event != nil:
		return TypeEvent
	case c.Protocol != nil && c.Protocol.Type == wanet.ProtocolEdit:
		return TypeEditedMessage
	case c.Protocol != nil:
		return TypeProtocolMessage
	default:
		return TypeUnknown
	}
}

// bodyOf extracts the textual body for a semantic type. Malformed content
// degrades to a placeholder instead of failing the message.
func bodyOf(t SemanticType, c *wanet.MessageContent) string {
	if c == nil {
		return ""
	}
	switch t {
	case TypeConversation:
		return *c.Conversation
	case TypeExtendedText:
		return c.ExtendedText.Text
	case TypeAdMetaPreview:
		ad := c.ExtendedText.ContextInfo.ExternalAdReply
		return strings.TrimSpace(ad.Title + "\n" + ad.Body)
	case TypeImage:
		return c.Image.Caption
	case TypeVideo:
		return c.Video.Caption
	case TypeAudio:
		return ""
	case TypeDocument:
		if c.Document.Caption != "" {
			return c.Document.Caption
		}
		return c.Document.FileName
	case TypeDocumentWithCaption:
		inner := c.DocumentWithCaption.Message
		if inner != nil && inner.Document != nil {
			if inner.Document.Caption != "" {
				return inner.Document.Caption
			}
			return inner.Document.FileName
		}
		return ""
	case TypeSticker:
		return "sticker"
	case TypeLocation:
		return fmt.Sprintf("%f, %f|%s", c.Location.Latitude, c.Location.Longitude, c.Location.ThumbnailB64)
	case TypeLiveLocation:
		if c.LiveLocation.Caption != "" {
			return c.LiveLocation.Caption
		}
		return fmt.Sprintf("%f, %f", c.LiveLocation.Latitude, c.LiveLocation.Longitude)
	case TypeContact:
		return FlattenVCard(c.Contact.DisplayName, c.Contact.VCard)
	case TypeContactsArray:
		parts := make([]string, 0, len(c.ContactsArray.Contacts))
		for _, contact := range c.ContactsArray.Contacts {
			parts = append(parts, FlattenVCard(contact.DisplayName, contact.VCard))
		}
		return strings.Join(parts, "\n\n")
	case TypeButtonsResponse:
		if c.ButtonsResponse.SelectedDisplayText != "" {
			return c.ButtonsResponse.SelectedDisplayText
		}
		return c.ButtonsResponse.SelectedButtonID
	case TypeListResponse:
		if c.ListResponse.SelectedRowID != "" {
			return c.ListResponse.SelectedRowID
		}
		return c.ListResponse.Title
	case TypeTemplateButtonReply:
		if c.TemplateButtonReply.SelectedID != "" {
			return c.TemplateButtonReply.SelectedID
		}
		return c.TemplateButtonReply.SelectedDisplayText
	case TypePoll:
		return c.Poll.Name + "\n\n" + strings.Join(c.Poll.Options, ", ")
	case TypeReaction:
		return c.Reaction.Text
	case TypeViewOnce:
		return viewOnceBody(c.ViewOnce.Message)
	case TypeEvent:
		return strings.TrimSpace(c.Event.Name + "\n" + c.Event.Description)
	case TypeEditedMessage:
		return editedBody(c.Protocol.EditedMessage)
	case TypeProtocolMessage:
		return ""
	default:
		return ""
	}
}

func viewOnceBody(inner *wanet.MessageContent) string {
	if inner == nil {
		return ""
	}
	switch {
	case inner.Image != nil:
		return inner.Image.Caption
	case inner.Video != nil:
		return inner.Video.Caption
	default:
		return ""
	}
}

// editedBody recursively locates the replacement text of an edit payload:
// conversation, extended text, then media captions.
func editedBody(inner *wanet.MessageContent) string {
	if inner == nil {
		return ""
	}
	switch {
	case inner.Conversation != nil:
		return *inner.Conversation
	case inner.ExtendedText != nil:
		return inner.ExtendedText.Text
	case inner.Image != nil:
		return inner.Image.Caption
	case inner.Video != nil:
		return inner.Video.Caption
	case inner.Document != nil:
		return inner.Document.Caption
	case inner.DocumentWithCaption != nil:
		return editedBody(inner.DocumentWithCaption.Message)
	default:
		return ""
	}
}
