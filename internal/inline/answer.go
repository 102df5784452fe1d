package inline

import (
	"context"
	"fmt"

	"github.com/madved/inlineq/internal/protocol"
)

// galleryTypes are result kinds rendered as a horizontal media gallery;
// mixing them with vertical kinds in one answer is rejected.
var galleryTypes = map[string]bool{
	"gif":     true,
	"photo":   true,
	"sticker": true,
	"video":   true,
}

var verticalTypes = map[string]bool{
	"article": true,
	"audio":   true,
	"contact": true,
	"file":    true,
	"game":    true,
	"geo":     true,
	"venue":   true,
	"voice":   true,
}

// AnswerQuery publishes a bot's results for a previously received inline
// query. Validation failures are reported synchronously and nothing is sent.
func (m *Manager) AnswerQuery(ctx context.Context, queryID int64, results []protocol.InputResult,
	cacheTime int32, nextOffset, switchPMText, switchPMParam string, personal bool,
) error {
	if queryID <= 0 {
		return fmt.Errorf("%w: query id must be positive", ErrBadInputResult)
	}
	if cacheTime < 0 {
		cacheTime = 0
	}
	if len(results) == 0 && nextOffset == "" && switchPMText == "" {
		return ErrEmptyAnswer
	}
	if switchPMText == "" && switchPMParam != "" {
		return fmt.Errorf("%w: switch_pm parameter without text", ErrBadInputResult)
	}

	gallery := false
	for i := range results {
		r := &results[i]
		if err := validateInputResult(r); err != nil {
			return err
		}
		if galleryTypes[r.Type] {
			gallery = true
		} else if gallery {
			return fmt.Errorf("%w: cannot mix gallery and list result types", ErrBadInputResult)
		}
	}

	answer := &protocol.Answer{
		QueryID:    queryID,
		Gallery:    gallery,
		Personal:   personal,
		CacheTime:  cacheTime,
		NextOffset: nextOffset,
		Results:    results,
	}
	if switchPMText != "" {
		answer.SwitchPM = &protocol.SwitchPM{Text: switchPMText, Parameter: switchPMParam}
	}

	m.logger.Debug("answering inline query", "query_id", queryID, "results", len(results))
	return m.messenger.SetInlineBotResults(ctx, answer)
}

func validateInputResult(r *protocol.InputResult) error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty result id", ErrBadInputResult)
	}
	if !galleryTypes[r.Type] && !verticalTypes[r.Type] {
		return fmt.Errorf("%w: unsupported result type %q", ErrBadInputResult, r.Type)
	}

	sm := r.SendMessage
	if sm == nil {
		return fmt.Errorf("%w: result %q has no message", ErrBadInputMessage, r.ID)
	}
	switch sm.Kind {
	case protocol.SendText:
		if sm.Text == "" {
			return fmt.Errorf("%w: result %q has empty text", ErrBadInputMessage, r.ID)
		}
	case protocol.SendGeo, protocol.SendVenue:
		if sm.Latitude == 0 && sm.Longitude == 0 {
			return fmt.Errorf("%w: result %q has no coordinates", ErrBadInputMessage, r.ID)
		}
	case protocol.SendContact:
		if sm.PhoneNumber == "" {
			return fmt.Errorf("%w: result %q has no phone number", ErrBadInputMessage, r.ID)
		}
	case protocol.SendAuto:
		if r.Type == "article" {
			return fmt.Errorf("%w: article result %q cannot send its own media", ErrBadInputMessage, r.ID)
		}
	default:
		return fmt.Errorf("%w: result %q has unknown message kind %q", ErrBadInputMessage, r.ID, sm.Kind)
	}

	switch r.Type {
	case "article":
		if r.Title == "" {
			return fmt.Errorf("%w: article result %q has no title", ErrBadInputResult, r.ID)
		}
	case "game":
		if r.ID == "" || r.Title == "" {
			return fmt.Errorf("%w: game result %q is incomplete", ErrBadInputResult, r.ID)
		}
	default:
		if r.ContentURL == "" {
			return fmt.Errorf("%w: result %q has no content url", ErrBadInputResult, r.ID)
		}
	}
	return nil
}
