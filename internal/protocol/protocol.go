// Package protocol defines the wire-shaped records exchanged with the
// transport collaborator. Encoding and decoding of these records is the
// transport's concern; the engine only inspects and produces them.
package protocol

import "github.com/go-telegram/bot/models"

// Location is a geographical point attached to a query or a result.
type Location struct {
	Latitude  float64
	Longitude float64
}

// BotResults is the raw answer a bot returned for an inline query.
type BotResults struct {
	QueryID    int64
	NextOffset string
	CacheTime  int32
	Gallery    bool
	SwitchPM   *SwitchPM
	Results    []Result
}

// SwitchPM asks the client to offer a "switch to private chat" button.
type SwitchPM struct {
	Text      string
	Parameter string
}

// Result is a single raw inline result record. A media record references
// already-uploaded content through Photo or Document; a plain record carries
// URLs that still have to be registered with the file catalog.
type Result struct {
	ID          string
	Type        string
	Title       string
	Description string

	URL         string
	ThumbURL    string
	ContentURL  string
	ContentType string
	Width       int32
	Height      int32
	Duration    int32

	Photo    *Photo
	Document *Document

	SendMessage *SendMessage
}

// Photo is a raw photo payload with its size variants.
type Photo struct {
	ID    string
	Sizes []PhotoSize
}

// PhotoSize is one variant of a raw photo.
type PhotoSize struct {
	Type   string
	Ref    string
	Width  int32
	Height int32
}

// DocumentKind discriminates the concrete media type a raw document carries.
type DocumentKind string

const (
	DocumentAnimation DocumentKind = "animation"
	DocumentAudio     DocumentKind = "audio"
	DocumentGeneral   DocumentKind = "file"
	DocumentSticker   DocumentKind = "sticker"
	DocumentVideo     DocumentKind = "video"
	DocumentVoiceNote DocumentKind = "voice"
	DocumentUnknown   DocumentKind = ""
)

// Document is a raw document payload. Ref is the opaque remote reference; an
// empty Ref denotes a malformed record.
type Document struct {
	Ref       string
	Kind      DocumentKind
	FileName  string
	MimeType  string
	Title     string
	Performer string
	Emoji     string
	Duration  int32
	Width     int32
	Height    int32
	Waveform  []byte
	ThumbURL  string
}

// SendMessageKind discriminates the message a result sends when chosen.
type SendMessageKind string

const (
	SendText    SendMessageKind = "text"
	SendGeo     SendMessageKind = "geo"
	SendVenue   SendMessageKind = "venue"
	SendContact SendMessageKind = "contact"
	// SendAuto sends the result's own media with an optional caption.
	SendAuto SendMessageKind = "auto"
)

// SendMessage is the raw "message to send when the result is chosen" payload
// attached to every result record.
type SendMessage struct {
	Kind      SendMessageKind
	Text      string
	NoWebpage bool

	Latitude   float64
	Longitude  float64
	LivePeriod int32

	Title    string
	Address  string
	Provider string
	VenueID  string

	PhoneNumber string
	FirstName   string
	LastName    string

	Caption string

	ReplyMarkup *models.InlineKeyboardMarkup
}

// InputResult is a producer-side raw result record, built by AnswerQuery and
// handed to the transport for publishing.
type InputResult struct {
	ID          string
	Type        string
	Title       string
	Description string

	URL         string
	ThumbURL    string
	ContentURL  string
	ContentType string
	Width       int32
	Height      int32
	Duration    int32

	SendMessage *SendMessage
}

// Answer is the full producer-side payload publishing results for a received
// inline query.
type Answer struct {
	QueryID    int64
	Gallery    bool
	Personal   bool
	CacheTime  int32
	NextOffset string
	SwitchPM   *SwitchPM
	Results    []InputResult
}
