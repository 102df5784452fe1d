// Package transport defines the request/response messenger collaborator the
// engine sends protocol messages through.
package transport

import (
	"context"

	"github.com/madved/inlineq/internal/protocol"
)

// InlineQueryRequest is an outbound "get inline results" request.
type InlineQueryRequest struct {
	BotID    int64
	Username string
	DialogID int64
	Location *protocol.Location
	Query    string
	Offset   string
}

// Messenger sends protocol messages and reports completions through
// callbacks. GetInlineBotResults must invoke done exactly once, from any
// goroutine, and never before returning; cancelling ctx aborts the request
// and completes it with the context's error.
type Messenger interface {
	GetInlineBotResults(ctx context.Context, req *InlineQueryRequest, done func(*protocol.BotResults, error))

	// SetInlineBotResults publishes a produced answer for a received query.
	SetInlineBotResults(ctx context.Context, answer *protocol.Answer) error
}
