package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zapdesk/zapdesk/internal/wanet"
)

func strPtr(s string) *string { return &s }

func envelopeWith(c *wanet.MessageContent) *wanet.Envelope {
	return &wanet.Envelope{
		Key:     wanet.MessageKey{RemoteJID: "5511999999999@s.whatsapp.net", ID: "MSG1"},
		Content: c,
	}
}

func TestClassifyConversation(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{Conversation: strPtr("hello")}))
	assert.Equal(t, TypeConversation, msg.Type)
	assert.Equal(t, "hello", msg.Body)
}

func TestClassifyExtendedText(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{
		ExtendedText: &wanet.ExtendedTextContent{Text: "quoted reply"},
	}))
	assert.Equal(t, TypeExtendedText, msg.Type)
	assert.Equal(t, "quoted reply", msg.Body)
}

func TestClassifyAdPreviewPrecedesExtendedText(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{
		ExtendedText: &wanet.ExtendedTextContent{
			Text: "I came from the ad",
			ContextInfo: &wanet.ContextInfo{
				ExternalAdReply: &wanet.ExternalAdReply{Title: "Promo", Body: "50% off"},
			},
		},
	}))
	assert.Equal(t, TypeAdMetaPreview, msg.Type)
	assert.Equal(t, "Promo\n50% off", msg.Body)
}

func TestClassifyImageCaption(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{
		Image: &wanet.ImageContent{Caption: "look at this"},
	}))
	assert.Equal(t, TypeImage, msg.Type)
	assert.Equal(t, "look at this", msg.Body)
}

func TestClassifyViewOncePrecedesInner(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{
		ViewOnce: &wanet.WrappedContent{
			Message: &wanet.MessageContent{Image: &wanet.ImageContent{Caption: "secret"}},
		},
	}))
	assert.Equal(t, TypeViewOnce, msg.Type)
	assert.Equal(t, "secret", msg.Body)
}

func TestClassifyDocumentFallsBackToFileName(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{
		Document: &wanet.DocumentContent{FileName: "invoice.pdf"},
	}))
	assert.Equal(t, TypeDocument, msg.Type)
	assert.Equal(t, "invoice.pdf", msg.Body)
}

func TestClassifyDocumentWithCaption(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{
		DocumentWithCaption: &wanet.WrappedContent{
			Message: &wanet.MessageContent{
				Document: &wanet.DocumentContent{FileName: "contract.pdf", Caption: "please sign"},
			},
		},
	}))
	assert.Equal(t, TypeDocumentWithCaption, msg.Type)
	assert.Equal(t, "please sign", msg.Body)
}

func TestClassifyLocation(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{
		Location: &wanet.LocationContent{Latitude: -23.55, Longitude: -46.63, ThumbnailB64: "abc"},
	}))
	assert.Equal(t, TypeLocation, msg.Type)
	assert.Equal(t, "-23.550000, -46.630000|abc", msg.Body)
}

func TestClassifyButtonsResponsePrefersDisplayText(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{
		ButtonsResponse: &wanet.ButtonsResponseContent{
			SelectedButtonID:    "2",
			SelectedDisplayText: "Suporte",
		},
	}))
	assert.Equal(t, TypeButtonsResponse, msg.Type)
	assert.Equal(t, "Suporte", msg.Body)

	msg = Classify(envelopeWith(&wanet.MessageContent{
		ButtonsResponse: &wanet.ButtonsResponseContent{SelectedButtonID: "2"},
	}))
	assert.Equal(t, "2", msg.Body)
}

func TestClassifyListResponsePrefersRowID(t *testing.T) {
	t.Parallel()
	msg := Classify(envelopeWith(&wanet.MessageContent{
		ListResponse: &wanet.ListResponseContent{Title: "Financeiro", SelectedRowID: "1"},
	}))
	assert.Equal(t, TypeListResponse, msg.Type)
	assert.Equal(t, "1", msg.Body)
}

func TestClassifyEditAndRevoke(t *testing.T) {
	t.Parallel()
	edit := Classify(envelopeWith(&wanet.MessageContent{
		Protocol: &wanet.ProtocolContent{
			Type:          wanet.ProtocolEdit,
			EditedMessage: &wanet.MessageContent{Conversation: strPtr("fixed typo")},
		},
	}))
	assert.Equal(t, TypeEditedMessage, edit.Type)
	assert.Equal(t, "fixed typo", edit.Body)

	revoke := Classify(envelopeWith(&wanet.MessageContent{
		Protocol: &wanet.ProtocolContent{Type: wanet.ProtocolRevoke},
	}))
	assert.Equal(t, TypeProtocolMessage, revoke.Type)
	assert.Equal(t, "", revoke.Body)
}

func TestClassifyUnknown(t *testing.T) {
	t.Parallel()
	assert.Equal(t, TypeUnknown, Classify(envelopeWith(nil)).Type)
	assert.Equal(t, TypeUnknown, Classify(envelopeWith(&wanet.MessageContent{})).Type)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		env    *wanet.Envelope
		ok     bool
		reason string
	}{
		{
			name: "plain text accepted",
			env:  envelopeWith(&wanet.MessageContent{Conversation: strPtr("hi")}),
			ok:   true,
		},
		{
			name: "status broadcast dropped",
			env: &wanet.Envelope{
				Key:     wanet.MessageKey{RemoteJID: wanet.StatusBroadcastJID},
				Content: &wanet.MessageContent{Conversation: strPtr("status")},
			},
			reason: DropReasonBroadcast,
		},
		{
			name: "ciphertext stub dropped",
			env: &wanet.Envelope{
				Key:      wanet.MessageKey{RemoteJID: "x@s.whatsapp.net"},
				StubType: wanet.StubCiphertext,
				Content:  &wanet.MessageContent{Conversation: strPtr("???")},
			},
			reason: DropReasonStub,
		},
		{
			name:   "empty content dropped as unknown",
			env:    envelopeWith(&wanet.MessageContent{}),
			reason: DropReasonUnknownType,
		},
		{
			name: "group stub passes validation",
			env: &wanet.Envelope{
				Key:      wanet.MessageKey{RemoteJID: "123@g.us"},
				StubType: wanet.StubGroupSubjectChange,
				Content:  &wanet.MessageContent{Conversation: strPtr("renamed")},
			},
			ok: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, reason := Validate(tt.env)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
