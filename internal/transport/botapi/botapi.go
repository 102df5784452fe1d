// Package botapi adapts the engine's transport to the Telegram Bot API via
// the go-telegram/bot client. Bot accounts can publish answers to inline
// queries and receive inline updates; issuing inline queries to other bots
// requires a user session, so the consumer-side path reports ErrUnsupported.
package botapi

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/madved/inlineq/internal/inline"
	"github.com/madved/inlineq/internal/protocol"
	"github.com/madved/inlineq/internal/transport"
)

// ErrUnsupported reports an operation the Bot API cannot perform.
var ErrUnsupported = errors.New("botapi: bot accounts cannot issue inline queries")

// Messenger implements transport.Messenger over a Bot API client.
type Messenger struct {
	bot    *tgbot.Bot
	logger *slog.Logger
}

func NewMessenger(b *tgbot.Bot, logger *slog.Logger) *Messenger {
	return &Messenger{bot: b, logger: logger.With("component", "botapi")}
}

// GetInlineBotResults always fails: see the package comment.
func (m *Messenger) GetInlineBotResults(ctx context.Context, req *transport.InlineQueryRequest, done func(*protocol.BotResults, error)) {
	m.logger.Warn("inline query dispatch requested over the bot api", "bot_id", req.BotID)
	go done(nil, ErrUnsupported)
}

// SetInlineBotResults publishes a produced answer through answerInlineQuery.
func (m *Messenger) SetInlineBotResults(ctx context.Context, answer *protocol.Answer) error {
	params := &tgbot.AnswerInlineQueryParams{
		InlineQueryID: strconv.FormatInt(answer.QueryID, 10),
		CacheTime:     int(answer.CacheTime),
		IsPersonal:    answer.Personal,
		NextOffset:    answer.NextOffset,
	}
	if answer.SwitchPM != nil {
		params.Button = &models.InlineQueryResultsButton{
			Text:           answer.SwitchPM.Text,
			StartParameter: answer.SwitchPM.Parameter,
		}
	}
	for i := range answer.Results {
		r := mapInputResult(&answer.Results[i])
		if r == nil {
			m.logger.Warn("dropping unmappable inline result", "result_id", answer.Results[i].ID)
			continue
		}
		params.Results = append(params.Results, r)
	}

	_, err := m.bot.AnswerInlineQuery(ctx, params)
	return err
}

// mapInputResult converts one raw result record to its Bot API counterpart.
func mapInputResult(r *protocol.InputResult) models.InlineQueryResult {
	sm := r.SendMessage
	content := inputContent(sm)
	markup := replyMarkup(sm)
	caption := ""
	if sm != nil {
		caption = sm.Caption
	}

	switch r.Type {
	case "article":
		return &models.InlineQueryResultArticle{
			ID:                  r.ID,
			Title:               r.Title,
			Description:         r.Description,
			URL:                 r.URL,
			ThumbnailURL:        r.ThumbURL,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "audio":
		return &models.InlineQueryResultAudio{
			ID:                  r.ID,
			AudioURL:            r.ContentURL,
			Title:               r.Title,
			Performer:           r.Description,
			AudioDuration:       int(r.Duration),
			Caption:             caption,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "contact":
		if sm == nil {
			return nil
		}
		return &models.InlineQueryResultContact{
			ID:                  r.ID,
			PhoneNumber:         sm.PhoneNumber,
			FirstName:           sm.FirstName,
			LastName:            sm.LastName,
			ThumbnailURL:        r.ThumbURL,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "file":
		return &models.InlineQueryResultDocument{
			ID:                  r.ID,
			Title:               r.Title,
			Description:         r.Description,
			DocumentURL:         r.ContentURL,
			MimeType:            r.ContentType,
			ThumbnailURL:        r.ThumbURL,
			Caption:             caption,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "game":
		return &models.InlineQueryResultGame{
			ID:            r.ID,
			GameShortName: r.ID,
			ReplyMarkup:   markup,
		}
	case "geo":
		if sm == nil {
			return nil
		}
		return &models.InlineQueryResultLocation{
			ID:                  r.ID,
			Latitude:            sm.Latitude,
			Longitude:           sm.Longitude,
			Title:               r.Title,
			LivePeriod:          int(sm.LivePeriod),
			ThumbnailURL:        r.ThumbURL,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "gif":
		return &models.InlineQueryResultGif{
			ID:                  r.ID,
			GifURL:              r.ContentURL,
			GifWidth:            int(r.Width),
			GifHeight:           int(r.Height),
			GifDuration:         int(r.Duration),
			ThumbnailURL:        r.ThumbURL,
			Title:               r.Title,
			Caption:             caption,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "photo":
		return &models.InlineQueryResultPhoto{
			ID:                  r.ID,
			PhotoURL:            r.ContentURL,
			ThumbnailURL:        r.ThumbURL,
			PhotoWidth:          int(r.Width),
			PhotoHeight:         int(r.Height),
			Title:               r.Title,
			Description:         r.Description,
			Caption:             caption,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "sticker":
		return &models.InlineQueryResultCachedSticker{
			ID:                  r.ID,
			StickerFileID:       r.ContentURL,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "venue":
		if sm == nil {
			return nil
		}
		return &models.InlineQueryResultVenue{
			ID:                  r.ID,
			Latitude:            sm.Latitude,
			Longitude:           sm.Longitude,
			Title:               sm.Title,
			Address:             sm.Address,
			FoursquareID:        sm.VenueID,
			ThumbnailURL:        r.ThumbURL,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "video":
		return &models.InlineQueryResultVideo{
			ID:                  r.ID,
			VideoURL:            r.ContentURL,
			MimeType:            r.ContentType,
			ThumbnailURL:        r.ThumbURL,
			Title:               r.Title,
			Description:         r.Description,
			VideoWidth:          int(r.Width),
			VideoHeight:         int(r.Height),
			VideoDuration:       int(r.Duration),
			Caption:             caption,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	case "voice":
		return &models.InlineQueryResultVoice{
			ID:                  r.ID,
			VoiceURL:            r.ContentURL,
			Title:               r.Title,
			VoiceDuration:       int(r.Duration),
			Caption:             caption,
			InputMessageContent: content,
			ReplyMarkup:         markup,
		}
	default:
		return nil
	}
}

// inputContent maps the declared message to Bot API input content. Auto
// messages return nil, letting the result send its own media.
func inputContent(sm *protocol.SendMessage) models.InputMessageContent {
	if sm == nil {
		return nil
	}
	switch sm.Kind {
	case protocol.SendText:
		content := &models.InputTextMessageContent{MessageText: sm.Text}
		if sm.NoWebpage {
			disabled := true
			content.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: &disabled}
		}
		return content
	case protocol.SendGeo:
		return &models.InputLocationMessageContent{
			Latitude:   sm.Latitude,
			Longitude:  sm.Longitude,
			LivePeriod: int(sm.LivePeriod),
		}
	case protocol.SendVenue:
		return &models.InputVenueMessageContent{
			Latitude:     sm.Latitude,
			Longitude:    sm.Longitude,
			Title:        sm.Title,
			Address:      sm.Address,
			FoursquareID: sm.VenueID,
		}
	case protocol.SendContact:
		return &models.InputContactMessageContent{
			PhoneNumber: sm.PhoneNumber,
			FirstName:   sm.FirstName,
			LastName:    sm.LastName,
		}
	default:
		return nil
	}
}

func replyMarkup(sm *protocol.SendMessage) *models.InlineKeyboardMarkup {
	if sm == nil {
		return nil
	}
	return sm.ReplyMarkup
}

// UpdateHandler routes inline updates into the manager. Other update kinds
// are ignored.
func UpdateHandler(mgr *inline.Manager, logger *slog.Logger) tgbot.HandlerFunc {
	log := logger.With("component", "botapi")
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		switch {
		case update.InlineQuery != nil:
			q := update.InlineQuery
			queryID, err := strconv.ParseInt(q.ID, 10, 64)
			if err != nil {
				log.Warn("ignoring inline query with non-numeric id", "query_id", q.ID)
				return
			}
			var senderID int64
			if q.From != nil {
				senderID = q.From.ID
			}
			log.DebugContext(ctx, "inline query received", "query_id", queryID, "sender_id", senderID)
			mgr.HandleNewQuery(queryID, senderID, mapLocation(q.Location), q.Query, q.Offset)
		case update.ChosenInlineResult != nil:
			c := update.ChosenInlineResult
			log.DebugContext(ctx, "inline result chosen", "result_id", c.ResultID, "user_id", c.From.ID)
			mgr.HandleChosenResult(c.From.ID, mapLocation(c.Location), c.Query, c.ResultID, c.InlineMessageID)
		}
	}
}

func mapLocation(loc *models.Location) *protocol.Location {
	if loc == nil {
		return nil
	}
	return &protocol.Location{Latitude: loc.Latitude, Longitude: loc.Longitude}
}
