// Package catalog defines the media catalog collaborators the engine uses to
// turn raw protocol payloads into typed media objects, together with the
// typed objects themselves.
package catalog

import (
	"errors"

	"github.com/madved/inlineq/internal/protocol"
)

var (
	// ErrEmptyPayload is returned when a raw payload has no usable content.
	ErrEmptyPayload = errors.New("catalog: empty media payload")
	// ErrBadURL is returned when a remote locator cannot be parsed.
	ErrBadURL = errors.New("catalog: malformed url")
)

// FileRef is an opaque handle to a file known to the file registry.
type FileRef struct {
	ID        int64
	RemoteRef string
	Name      string
}

// IsValid reports whether the handle points at a registered file.
func (f FileRef) IsValid() bool { return f.ID != 0 }

// FileRegistry registers remote content and hands out file handles.
type FileRegistry interface {
	// FromURL registers a freshly uploaded remote file by its URL.
	FromURL(url string) (FileRef, error)
	// FromRef registers an already-cached file by its opaque remote reference.
	FromRef(ref string) (FileRef, error)
}

// PhotoSize is one resolved variant of a photo.
type PhotoSize struct {
	Type   string
	File   FileRef
	Width  int32
	Height int32
}

// Photo is a resolved photo with all of its size variants.
type Photo struct {
	Sizes []PhotoSize
}

// Animation is a resolved GIF or silent-video animation.
type Animation struct {
	File      FileRef
	Thumbnail *PhotoSize
	FileName  string
	MimeType  string
	Duration  int32
	Width     int32
	Height    int32
}

// Audio is a resolved music file.
type Audio struct {
	File      FileRef
	Thumbnail *PhotoSize
	Title     string
	Performer string
	FileName  string
	MimeType  string
	Duration  int32
}

// Document is a resolved general file.
type Document struct {
	File      FileRef
	Thumbnail *PhotoSize
	FileName  string
	MimeType  string
}

// Sticker is a resolved sticker.
type Sticker struct {
	File      FileRef
	Thumbnail *PhotoSize
	Emoji     string
	Width     int32
	Height    int32
}

// Video is a resolved video file.
type Video struct {
	File      FileRef
	Thumbnail *PhotoSize
	FileName  string
	MimeType  string
	Duration  int32
	Width     int32
	Height    int32
}

// VoiceNote is a resolved voice recording.
type VoiceNote struct {
	File     FileRef
	MimeType string
	Duration int32
	Waveform []byte
}

// Game is a playable game assembled from raw result fields.
type Game struct {
	ShortName   string
	Title       string
	Description string
	Text        string
	Photo       *Photo
	Animation   *Animation
}

// ParsedDocument is the typed object a raw document resolved into. Exactly
// one pointer field matching Kind is set.
type ParsedDocument struct {
	Kind      protocol.DocumentKind
	Animation *Animation
	Audio     *Audio
	Document  *Document
	Sticker   *Sticker
	Video     *Video
	VoiceNote *VoiceNote
}

// File returns the handle of whichever media the parsed document holds.
func (p ParsedDocument) FileRef() FileRef {
	switch p.Kind {
	case protocol.DocumentAnimation:
		return p.Animation.File
	case protocol.DocumentAudio:
		return p.Audio.File
	case protocol.DocumentGeneral:
		return p.Document.File
	case protocol.DocumentSticker:
		return p.Sticker.File
	case protocol.DocumentVideo:
		return p.Video.File
	case protocol.DocumentVoiceNote:
		return p.VoiceNote.File
	}
	return FileRef{}
}

// MediaCatalog resolves raw media payloads into typed objects.
type MediaCatalog interface {
	// ResolveDocument resolves a raw document by its remote reference.
	ResolveDocument(doc *protocol.Document) (ParsedDocument, error)
	// ResolvePhoto resolves a raw photo with its size variants.
	ResolvePhoto(photo *protocol.Photo) (Photo, error)
}
