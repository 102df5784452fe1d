package inline

import (
	"log/slog"

	"github.com/madved/inlineq/internal/catalog"
	"github.com/madved/inlineq/internal/protocol"
)

// contentRegistry remembers, per answered query, the message content each
// result sends when chosen. Entries live for the life of the process; chosen
// results may arrive long after the cache entry for the query is gone.
type contentRegistry struct {
	payloads  map[int64]map[string]SendPayload
	queryBots map[int64]int64
	logger    *slog.Logger
}

func newContentRegistry(logger *slog.Logger) *contentRegistry {
	return &contentRegistry{
		payloads:  make(map[int64]map[string]SendPayload),
		queryBots: make(map[int64]int64),
		logger:    logger,
	}
}

func (r *contentRegistry) setQueryBot(queryID, botID int64) {
	r.queryBots[queryID] = botID
}

func (r *contentRegistry) queryBot(queryID int64) (int64, bool) {
	botID, ok := r.queryBots[queryID]
	return botID, ok
}

func (r *contentRegistry) register(queryID int64, resultID string, payload SendPayload) {
	byResult := r.payloads[queryID]
	if byResult == nil {
		byResult = make(map[string]SendPayload)
		r.payloads[queryID] = byResult
	}
	byResult[resultID] = payload
}

func (r *contentRegistry) lookup(queryID int64, resultID string) (SendPayload, bool) {
	payload, ok := r.payloads[queryID][resultID]
	return payload, ok
}

// registerContent builds the send payload for a result and records it in the
// registry. It returns false when the declared message cannot produce
// content, which vetoes the result entirely.
func (m *Manager) registerContent(queryID int64, resultID string, sm *protocol.SendMessage,
	allowed mediaKind, file catalog.FileRef, photo *catalog.Photo, game *catalog.Game,
) bool {
	if sm == nil {
		m.logger.Warn("skipping inline result without message content", "result_id", resultID)
		return false
	}

	payload := SendPayload{ReplyMarkup: sm.ReplyMarkup}

	switch sm.Kind {
	case protocol.SendText:
		payload.Content = TextContent{Text: sm.Text}
		payload.DisableLinkPreview = sm.NoWebpage
	case protocol.SendGeo:
		payload.Content = LocationContent{
			Location:   protocol.Location{Latitude: sm.Latitude, Longitude: sm.Longitude},
			LivePeriod: sm.LivePeriod,
		}
	case protocol.SendVenue:
		payload.Content = VenueContent{Venue: Venue{
			Location: protocol.Location{Latitude: sm.Latitude, Longitude: sm.Longitude},
			Title:    sm.Title, Address: sm.Address, Provider: sm.Provider, ID: sm.VenueID,
		}}
	case protocol.SendContact:
		payload.Content = ContactContent{Contact: Contact{
			PhoneNumber: sm.PhoneNumber, FirstName: sm.FirstName, LastName: sm.LastName,
		}}
	case protocol.SendAuto:
		payload.Content = autoContent(allowed, file, photo, game, sm.Caption)
	default:
		m.logger.Warn("skipping inline result with unknown message kind",
			"result_id", resultID, "kind", sm.Kind)
		return false
	}

	if payload.Content == nil {
		m.logger.Warn("skipping inline result whose message content cannot be built",
			"result_id", resultID, "kind", sm.Kind)
		return false
	}

	m.registry.register(queryID, resultID, payload)
	return true
}

// autoContent derives message content from the result's own media. A result
// without media, or with an unregistered file handle, cannot carry an auto
// message.
func autoContent(allowed mediaKind, file catalog.FileRef, photo *catalog.Photo, game *catalog.Game, caption string) MessageContent {
	switch allowed {
	case mediaGame:
		if game == nil {
			return nil
		}
		return GameContent{Game: *game}
	case mediaPhoto:
		if photo == nil {
			return nil
		}
		return PhotoContent{Photo: *photo, Caption: caption}
	}

	if !file.IsValid() {
		return nil
	}
	switch allowed {
	case mediaAnimation:
		return AnimationContent{File: file, Caption: caption}
	case mediaAudio:
		return AudioContent{File: file, Caption: caption}
	case mediaDocument:
		return DocumentContent{File: file, Caption: caption}
	case mediaSticker:
		return StickerContent{File: file}
	case mediaVideo:
		return VideoContent{File: file, Caption: caption}
	case mediaVoiceNote:
		return VoiceNoteContent{File: file, Caption: caption}
	default:
		return nil
	}
}
