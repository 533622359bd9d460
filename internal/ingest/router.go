package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/session"
	"github.com/zapdesk/zapdesk/internal/ticket"
)

// ErrNoHandler marks a semantic type no handler was registered for.
var ErrNoHandler = errors.New("ERR_NO_MESSAGE_HANDLER")

// HandlerInput carries one accepted message plus its resolved ticket context
// through the router to a handler.
type HandlerInput struct {
	Sess        *session.Session
	Msg         ClassifiedMessage
	Wa          sqlc.Whatsapp
	Res         ticket.Resolution
	FromHistory bool
}

// Handler processes all messages of the semantic types it is registered for.
type Handler interface {
	Handle(ctx context.Context, in *HandlerInput) error
}

// Router maps semantic types to handlers. The table is built once at wiring
// time; registration is not safe for concurrent use with dispatch.
type Router struct {
	handlers map[SemanticType]Handler
}

func NewRouter() *Router {
	return &Router{handlers: make(map[SemanticType]Handler)}
}

// Register binds a handler to the given semantic types, replacing any
// previous binding.
func (r *Router) Register(h Handler, types ...SemanticType) {
	for _, t := range types {
		r.handlers[t] = h
	}
}

// Handles reports whether a handler is registered for the type.
func (r *Router) Handles(t SemanticType) bool {
	_, ok := r.handlers[t]
	return ok
}

// Dispatch routes the message to its handler.
func (r *Router) Dispatch(ctx context.Context, in *HandlerInput) error {
	h, ok := r.handlers[in.Msg.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, in.Msg.Type)
	}
	return h.Handle(ctx, in)
}

// NewDefaultRouter wires the standard handler table covering every semantic
// type the classifier can produce.
func NewDefaultRouter(text *TextHandler, media *MediaHandler, vcard *VCardHandler, edited *EditedHandler) *Router {
	r := NewRouter()
	r.Register(text,
		TypeConversation,
		TypeExtendedText,
		TypeAdMetaPreview,
		TypeLocation,
		TypeLiveLocation,
		TypeButtonsResponse,
		TypeListResponse,
		TypeTemplateButtonReply,
		TypePoll,
		TypeReaction,
		TypeEvent,
	)
	r.Register(media,
		TypeImage,
		TypeVideo,
		TypeAudio,
		TypeDocument,
		TypeDocumentWithCaption,
		TypeSticker,
		TypeViewOnce,
	)
	r.Register(vcard, TypeContact, TypeContactsArray)
	r.Register(edited, TypeEditedMessage, TypeProtocolMessage)
	return r
}
