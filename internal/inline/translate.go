package inline

import (
	"strconv"
	"strings"

	"github.com/madved/inlineq/internal/catalog"
	"github.com/madved/inlineq/internal/protocol"
)

// mediaKind is the media content a result is allowed to register. mediaNone
// restricts the payload to the non-media kinds (text, location, venue,
// contact).
type mediaKind int

const (
	mediaNone mediaKind = iota
	mediaAnimation
	mediaAudio
	mediaDocument
	mediaGame
	mediaPhoto
	mediaSticker
	mediaVideo
	mediaVoiceNote
)

// translate converts a raw bot answer into the typed snapshot stored in the
// cache, registering every kept result's send payload on the way. Malformed
// records are skipped, never failing the batch. Caller holds the lock.
func (m *Manager) translate(botID int64, res *protocol.BotResults) *Results {
	m.registry.setQueryBot(res.QueryID, botID)

	out := &Results{
		QueryID:    res.QueryID,
		NextOffset: res.NextOffset,
	}
	if res.SwitchPM != nil {
		out.SwitchPMText = res.SwitchPM.Text
		out.SwitchPMParameter = res.SwitchPM.Parameter
	}

	for i := range res.Results {
		rec := &res.Results[i]
		result := m.translateRecord(res.QueryID, rec)
		if result == nil {
			continue
		}
		out.Items = append(out.Items, result)
	}
	return out
}

func (m *Manager) translateRecord(queryID int64, rec *protocol.Result) Result {
	switch {
	case rec.Type == "game":
		return m.translateGame(queryID, rec)
	case rec.Document != nil:
		return m.translateDocument(queryID, rec)
	case rec.Photo != nil:
		return m.translatePhoto(queryID, rec)
	default:
		return m.translatePlain(queryID, rec)
	}
}

// translateGame assembles the game object from raw fields; no registry
// lookup is involved and registration always succeeds for this kind.
func (m *Manager) translateGame(queryID int64, rec *protocol.Result) Result {
	game := catalog.Game{
		ShortName:   rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
	}
	if rec.Photo != nil {
		if photo, err := m.media.ResolvePhoto(rec.Photo); err == nil {
			game.Photo = &photo
		}
	}
	if rec.Document != nil && rec.Document.Kind == protocol.DocumentAnimation {
		if parsed, err := m.media.ResolveDocument(rec.Document); err == nil {
			game.Animation = parsed.Animation
		}
	}

	if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaGame, catalog.FileRef{}, nil, &game) {
		return nil
	}
	return &GameResult{ID: rec.ID, Game: game}
}

// translateDocument handles media-by-reference records carrying a document.
func (m *Manager) translateDocument(queryID int64, rec *protocol.Result) Result {
	parsed, err := m.media.ResolveDocument(rec.Document)
	if err != nil {
		m.logger.Warn("skipping inline result with bad document payload",
			"result_id", rec.ID, "error", err)
		return nil
	}

	switch parsed.Kind {
	case protocol.DocumentAnimation:
		if rec.Type != "gif" {
			m.logger.Debug("unexpected inline result type", "result_id", rec.ID, "type", rec.Type)
		}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaAnimation, parsed.Animation.File, nil, nil) {
			return nil
		}
		return &AnimationResult{ID: rec.ID, Title: rec.Title, Animation: *parsed.Animation}
	case protocol.DocumentAudio:
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaAudio, parsed.Audio.File, nil, nil) {
			return nil
		}
		return &AudioResult{ID: rec.ID, Audio: *parsed.Audio}
	case protocol.DocumentGeneral:
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaDocument, parsed.Document.File, nil, nil) {
			return nil
		}
		return &DocumentResult{ID: rec.ID, Title: rec.Title, Description: rec.Description, Document: *parsed.Document}
	case protocol.DocumentSticker:
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaSticker, parsed.Sticker.File, nil, nil) {
			return nil
		}
		return &StickerResult{ID: rec.ID, Sticker: *parsed.Sticker}
	case protocol.DocumentVideo:
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaVideo, parsed.Video.File, nil, nil) {
			return nil
		}
		return &VideoResult{ID: rec.ID, Title: rec.Title, Description: rec.Description, Video: *parsed.Video}
	case protocol.DocumentVoiceNote:
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaVoiceNote, parsed.VoiceNote.File, nil, nil) {
			return nil
		}
		return &VoiceNoteResult{ID: rec.ID, Title: rec.Title, VoiceNote: *parsed.VoiceNote}
	default:
		m.logger.Warn("skipping inline result with unknown document kind", "result_id", rec.ID)
		return nil
	}
}

// translatePhoto handles media-by-reference records carrying a photo.
func (m *Manager) translatePhoto(queryID int64, rec *protocol.Result) Result {
	photo, err := m.media.ResolvePhoto(rec.Photo)
	if err != nil {
		m.logger.Warn("skipping inline result with bad photo payload",
			"result_id", rec.ID, "error", err)
		return nil
	}

	if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaPhoto, catalog.FileRef{}, &photo, nil) {
		return nil
	}
	return &PhotoResult{ID: rec.ID, Title: rec.Title, Description: rec.Description, Photo: photo}
}

// translatePlain handles records without attached media payloads: the simple
// typed kinds, plus freshly uploaded media identified only by URL.
func (m *Manager) translatePlain(queryID int64, rec *protocol.Result) Result {
	switch rec.Type {
	case "article":
		article := &ArticleResult{
			ID:          rec.ID,
			URL:         rec.ContentURL,
			HideURL:     rec.URL == "",
			Title:       rec.Title,
			Description: rec.Description,
			Thumbnail:   m.registerThumbnail(rec.ThumbURL, rec.Width, rec.Height),
		}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaNone, catalog.FileRef{}, nil, nil) {
			return nil
		}
		return article
	case "contact":
		contact := Contact{PhoneNumber: rec.Description, FirstName: rec.Title}
		if sm := rec.SendMessage; sm != nil && sm.Kind == protocol.SendContact {
			contact = Contact{PhoneNumber: sm.PhoneNumber, FirstName: sm.FirstName, LastName: sm.LastName}
		}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaNone, catalog.FileRef{}, nil, nil) {
			return nil
		}
		return &ContactResult{ID: rec.ID, Contact: contact,
			Thumbnail: m.registerThumbnail(rec.ThumbURL, rec.Width, rec.Height)}
	case "geo":
		loc := protocol.Location{}
		if sm := rec.SendMessage; sm != nil && sm.Kind == protocol.SendGeo {
			loc = protocol.Location{Latitude: sm.Latitude, Longitude: sm.Longitude}
		} else {
			loc = parseCoordinates(rec.Description)
		}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaNone, catalog.FileRef{}, nil, nil) {
			return nil
		}
		return &LocationResult{ID: rec.ID, Title: rec.Title, Location: loc,
			Thumbnail: m.registerThumbnail(rec.ThumbURL, rec.Width, rec.Height)}
	case "venue":
		venue := Venue{Title: rec.Title, Address: rec.Description}
		if sm := rec.SendMessage; sm != nil {
			switch sm.Kind {
			case protocol.SendVenue:
				venue = Venue{
					Location: protocol.Location{Latitude: sm.Latitude, Longitude: sm.Longitude},
					Title:    sm.Title, Address: sm.Address, Provider: sm.Provider, ID: sm.VenueID,
				}
			case protocol.SendGeo:
				venue.Location = protocol.Location{Latitude: sm.Latitude, Longitude: sm.Longitude}
			}
		}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaNone, catalog.FileRef{}, nil, nil) {
			return nil
		}
		return &VenueResult{ID: rec.ID, Venue: venue,
			Thumbnail: m.registerThumbnail(rec.ThumbURL, rec.Width, rec.Height)}
	default:
		return m.translateFreshMedia(queryID, rec)
	}
}

// translateFreshMedia handles results whose media is identified by a URL and
// must first be registered with the file catalog.
func (m *Manager) translateFreshMedia(queryID int64, rec *protocol.Result) Result {
	file, err := m.files.FromURL(rec.ContentURL)
	if err != nil {
		m.logger.Warn("skipping inline result with bad content url",
			"result_id", rec.ID, "url", rec.ContentURL, "error", err)
		return nil
	}

	var thumb *catalog.PhotoSize
	if strings.Contains(rec.ThumbURL, ".") {
		tf, err := m.files.FromURL(rec.ThumbURL)
		if err != nil {
			m.logger.Warn("skipping inline result with bad thumbnail url",
				"result_id", rec.ID, "url", rec.ThumbURL, "error", err)
			return nil
		}
		thumb = &catalog.PhotoSize{Type: "t", File: tf, Width: rec.Width, Height: rec.Height}
	}

	duration := rec.Duration
	if duration < 0 {
		duration = 0
	}

	switch {
	case rec.Type == "audio":
		audio := catalog.Audio{File: file, Thumbnail: thumb, Title: rec.Title, Performer: rec.Description,
			FileName: file.Name, MimeType: rec.ContentType, Duration: duration}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaAudio, file, nil, nil) {
			return nil
		}
		return &AudioResult{ID: rec.ID, Audio: audio}
	case rec.Type == "file":
		doc := catalog.Document{File: file, Thumbnail: thumb, FileName: file.Name, MimeType: rec.ContentType}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaDocument, file, nil, nil) {
			return nil
		}
		return &DocumentResult{ID: rec.ID, Title: rec.Title, Description: rec.Description, Document: doc}
	case rec.Type == "gif" && (rec.ContentType == "image/gif" || rec.ContentType == "video/mp4"):
		animation := catalog.Animation{File: file, Thumbnail: thumb, FileName: file.Name,
			MimeType: rec.ContentType, Duration: duration, Width: rec.Width, Height: rec.Height}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaAnimation, file, nil, nil) {
			return nil
		}
		return &AnimationResult{ID: rec.ID, Title: rec.Title, Animation: animation}
	case rec.Type == "photo" && rec.ContentType == "image/jpeg":
		photo := catalog.Photo{}
		if thumb != nil {
			photo.Sizes = append(photo.Sizes, *thumb)
		}
		photo.Sizes = append(photo.Sizes, catalog.PhotoSize{Type: "u", File: file, Width: rec.Width, Height: rec.Height})
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaPhoto, catalog.FileRef{}, &photo, nil) {
			return nil
		}
		return &PhotoResult{ID: rec.ID, Title: rec.Title, Description: rec.Description, Photo: photo}
	case rec.Type == "sticker":
		sticker := catalog.Sticker{File: file, Thumbnail: thumb, Width: rec.Width, Height: rec.Height}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaSticker, file, nil, nil) {
			return nil
		}
		return &StickerResult{ID: rec.ID, Sticker: sticker}
	case rec.Type == "video":
		video := catalog.Video{File: file, Thumbnail: thumb, FileName: file.Name, MimeType: rec.ContentType,
			Duration: duration, Width: rec.Width, Height: rec.Height}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaVideo, file, nil, nil) {
			return nil
		}
		return &VideoResult{ID: rec.ID, Title: rec.Title, Description: rec.Description, Video: video}
	case rec.Type == "voice":
		voice := catalog.VoiceNote{File: file, MimeType: rec.ContentType, Duration: duration}
		if !m.registerContent(queryID, rec.ID, rec.SendMessage, mediaVoiceNote, file, nil, nil) {
			return nil
		}
		return &VoiceNoteResult{ID: rec.ID, Title: rec.Title, VoiceNote: voice}
	default:
		m.logger.Warn("skipping unsupported inline result", "result_id", rec.ID, "type", rec.Type)
		return nil
	}
}

// registerThumbnail registers a thumbnail URL with the file catalog when it
// looks like one. Failures just drop the thumbnail, not the record.
func (m *Manager) registerThumbnail(thumbURL string, width, height int32) *catalog.PhotoSize {
	if !strings.Contains(thumbURL, ".") {
		return nil
	}
	file, err := m.files.FromURL(thumbURL)
	if err != nil {
		return nil
	}
	return &catalog.PhotoSize{Type: "t", File: file, Width: width, Height: height}
}

func parseCoordinates(s string) protocol.Location {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return protocol.Location{}
	}
	lat, _ := strconv.ParseFloat(fields[0], 64)
	lon, _ := strconv.ParseFloat(fields[1], 64)
	return protocol.Location{Latitude: lat, Longitude: lon}
}
