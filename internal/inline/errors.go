package inline

import "errors"

var (
	// ErrSuperseded reports that a queued or in-flight query was replaced by
	// a newer one before it could complete.
	ErrSuperseded = errors.New("inline: request cancelled")

	// ErrBotNotFound reports that the target bot is unknown to the directory.
	ErrBotNotFound = errors.New("inline: bot not found")

	// ErrNotInlineBot reports that the target bot does not support inline
	// queries.
	ErrNotInlineBot = errors.New("inline: bot doesn't support inline queries")

	// ErrEmptyAnswer reports an answer with a nil result record.
	ErrEmptyAnswer = errors.New("inline: inline query result must not be empty")

	// ErrBadInputResult reports a malformed producer-side result record.
	ErrBadInputResult = errors.New("inline: malformed input result")

	// ErrBadInputMessage reports a disallowed or malformed message payload on
	// a producer-side result record.
	ErrBadInputMessage = errors.New("inline: unallowed inline message content type")
)
