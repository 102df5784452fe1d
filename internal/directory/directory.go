// Package directory is the identity-lookup collaborator: it answers who a
// bot is, both from a local cache (synchronously) and from the network
// (asynchronously, completion-callback style).
package directory

import "errors"

// ErrUnknownBot is returned when an identity cannot be resolved.
var ErrUnknownBot = errors.New("directory: unknown bot")

// BotInfo describes a bot as far as the inline query engine cares.
type BotInfo struct {
	ID            int64
	Username      string
	IsInline      bool
	NeedsLocation bool
}

// Service resolves bot identities. Bot answers from local knowledge only;
// the Resolve methods may go to the network and complete asynchronously.
type Service interface {
	Bot(id int64) (BotInfo, bool)
	ResolveBot(id int64, done func(BotInfo, error))
	ResolveUsername(username string, done func(BotInfo, error))
}
