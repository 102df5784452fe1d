package inline

import (
	"github.com/go-telegram/bot/models"

	"github.com/madved/inlineq/internal/catalog"
	"github.com/madved/inlineq/internal/protocol"
)

// MessageContent is the typed "message to send" payload kept for a result.
// The set of implementations is closed.
type MessageContent interface {
	contentKind() string
}

// TextContent sends plain text.
type TextContent struct {
	Text string
}

func (TextContent) contentKind() string { return "text" }

// LocationContent sends a static or live location.
type LocationContent struct {
	Location   protocol.Location
	LivePeriod int32
}

func (LocationContent) contentKind() string { return "location" }

// VenueContent sends a venue.
type VenueContent struct {
	Venue Venue
}

func (VenueContent) contentKind() string { return "venue" }

// ContactContent sends a phone-book entry.
type ContactContent struct {
	Contact Contact
}

func (ContactContent) contentKind() string { return "contact" }

// AnimationContent sends the result's animation with an optional caption.
type AnimationContent struct {
	File    catalog.FileRef
	Caption string
}

func (AnimationContent) contentKind() string { return "animation" }

// AudioContent sends the result's audio with an optional caption.
type AudioContent struct {
	File    catalog.FileRef
	Caption string
}

func (AudioContent) contentKind() string { return "audio" }

// DocumentContent sends the result's document with an optional caption.
type DocumentContent struct {
	File    catalog.FileRef
	Caption string
}

func (DocumentContent) contentKind() string { return "document" }

// PhotoContent sends the result's photo with an optional caption.
type PhotoContent struct {
	Photo   catalog.Photo
	Caption string
}

func (PhotoContent) contentKind() string { return "photo" }

// StickerContent sends the result's sticker.
type StickerContent struct {
	File catalog.FileRef
}

func (StickerContent) contentKind() string { return "sticker" }

// VideoContent sends the result's video with an optional caption.
type VideoContent struct {
	File    catalog.FileRef
	Caption string
}

func (VideoContent) contentKind() string { return "video" }

// VoiceNoteContent sends the result's voice note with an optional caption.
type VoiceNoteContent struct {
	File    catalog.FileRef
	Caption string
}

func (VoiceNoteContent) contentKind() string { return "voice_note" }

// GameContent sends the result's game.
type GameContent struct {
	Game catalog.Game
}

func (GameContent) contentKind() string { return "game" }

// SendPayload is everything needed to send a chosen result: the typed
// content, the keyboard to attach, and the link-preview switch.
type SendPayload struct {
	Content            MessageContent
	ReplyMarkup        *models.InlineKeyboardMarkup
	DisableLinkPreview bool
}
