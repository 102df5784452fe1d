package inline

import (
	"github.com/madved/inlineq/internal/catalog"
	"github.com/madved/inlineq/internal/protocol"
)

// Contact is a phone-book entry a result can carry or send.
type Contact struct {
	PhoneNumber string
	FirstName   string
	LastName    string
}

// Venue is a place with a location and human-readable details.
type Venue struct {
	Location protocol.Location
	Title    string
	Address  string
	Provider string
	ID       string
}

// Result is one typed inline query result. The set of implementations is
// closed; translation maps protocol discriminants onto it once, at the
// boundary.
type Result interface {
	// ResultID returns the bot-assigned id used to pick this result.
	ResultID() string
	clone() Result
}

// Results is a consumable snapshot of a completed inline query.
type Results struct {
	QueryID           int64
	NextOffset        string
	SwitchPMText      string
	SwitchPMParameter string
	Items             []Result
}

// Clone deep-copies the snapshot so independent holders cannot observe each
// other's mutations.
func (r *Results) Clone() *Results {
	if r == nil {
		return nil
	}
	out := &Results{
		QueryID:           r.QueryID,
		NextOffset:        r.NextOffset,
		SwitchPMText:      r.SwitchPMText,
		SwitchPMParameter: r.SwitchPMParameter,
	}
	if r.Items != nil {
		out.Items = make([]Result, len(r.Items))
		for i, item := range r.Items {
			out.Items[i] = item.clone()
		}
	}
	return out
}

// ArticleResult is a link-style result.
type ArticleResult struct {
	ID          string
	URL         string
	HideURL     bool
	Title       string
	Description string
	Thumbnail   *catalog.PhotoSize
}

func (r *ArticleResult) ResultID() string { return r.ID }
func (r *ArticleResult) clone() Result {
	c := *r
	c.Thumbnail = clonePhotoSize(r.Thumbnail)
	return &c
}

// ContactResult carries a phone-book entry.
type ContactResult struct {
	ID        string
	Contact   Contact
	Thumbnail *catalog.PhotoSize
}

func (r *ContactResult) ResultID() string { return r.ID }
func (r *ContactResult) clone() Result {
	c := *r
	c.Thumbnail = clonePhotoSize(r.Thumbnail)
	return &c
}

// LocationResult carries a geographical point.
type LocationResult struct {
	ID        string
	Title     string
	Location  protocol.Location
	Thumbnail *catalog.PhotoSize
}

func (r *LocationResult) ResultID() string { return r.ID }
func (r *LocationResult) clone() Result {
	c := *r
	c.Thumbnail = clonePhotoSize(r.Thumbnail)
	return &c
}

// VenueResult carries a venue.
type VenueResult struct {
	ID        string
	Venue     Venue
	Thumbnail *catalog.PhotoSize
}

func (r *VenueResult) ResultID() string { return r.ID }
func (r *VenueResult) clone() Result {
	c := *r
	c.Thumbnail = clonePhotoSize(r.Thumbnail)
	return &c
}

// GameResult carries a playable game.
type GameResult struct {
	ID   string
	Game catalog.Game
}

func (r *GameResult) ResultID() string { return r.ID }
func (r *GameResult) clone() Result {
	c := *r
	c.Game.Photo = clonePhoto(r.Game.Photo)
	c.Game.Animation = cloneAnimation(r.Game.Animation)
	return &c
}

// AnimationResult carries an animation.
type AnimationResult struct {
	ID        string
	Title     string
	Animation catalog.Animation
}

func (r *AnimationResult) ResultID() string { return r.ID }
func (r *AnimationResult) clone() Result {
	c := *r
	c.Animation.Thumbnail = clonePhotoSize(r.Animation.Thumbnail)
	return &c
}

// AudioResult carries a music file.
type AudioResult struct {
	ID    string
	Audio catalog.Audio
}

func (r *AudioResult) ResultID() string { return r.ID }
func (r *AudioResult) clone() Result {
	c := *r
	c.Audio.Thumbnail = clonePhotoSize(r.Audio.Thumbnail)
	return &c
}

// DocumentResult carries a general file.
type DocumentResult struct {
	ID          string
	Title       string
	Description string
	Document    catalog.Document
}

func (r *DocumentResult) ResultID() string { return r.ID }
func (r *DocumentResult) clone() Result {
	c := *r
	c.Document.Thumbnail = clonePhotoSize(r.Document.Thumbnail)
	return &c
}

// PhotoResult carries a photo.
type PhotoResult struct {
	ID          string
	Title       string
	Description string
	Photo       catalog.Photo
}

func (r *PhotoResult) ResultID() string { return r.ID }
func (r *PhotoResult) clone() Result {
	c := *r
	if p := clonePhoto(&r.Photo); p != nil {
		c.Photo = *p
	}
	return &c
}

// StickerResult carries a sticker.
type StickerResult struct {
	ID      string
	Sticker catalog.Sticker
}

func (r *StickerResult) ResultID() string { return r.ID }
func (r *StickerResult) clone() Result {
	c := *r
	c.Sticker.Thumbnail = clonePhotoSize(r.Sticker.Thumbnail)
	return &c
}

// VideoResult carries a video file.
type VideoResult struct {
	ID          string
	Title       string
	Description string
	Video       catalog.Video
}

func (r *VideoResult) ResultID() string { return r.ID }
func (r *VideoResult) clone() Result {
	c := *r
	c.Video.Thumbnail = clonePhotoSize(r.Video.Thumbnail)
	return &c
}

// VoiceNoteResult carries a voice recording.
type VoiceNoteResult struct {
	ID        string
	Title     string
	VoiceNote catalog.VoiceNote
}

func (r *VoiceNoteResult) ResultID() string { return r.ID }
func (r *VoiceNoteResult) clone() Result {
	c := *r
	c.VoiceNote.Waveform = append([]byte(nil), r.VoiceNote.Waveform...)
	return &c
}

func clonePhotoSize(s *catalog.PhotoSize) *catalog.PhotoSize {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func clonePhoto(p *catalog.Photo) *catalog.Photo {
	if p == nil {
		return nil
	}
	c := catalog.Photo{Sizes: append([]catalog.PhotoSize(nil), p.Sizes...)}
	return &c
}

func cloneAnimation(a *catalog.Animation) *catalog.Animation {
	if a == nil {
		return nil
	}
	c := *a
	c.Thumbnail = clonePhotoSize(a.Thumbnail)
	return &c
}
