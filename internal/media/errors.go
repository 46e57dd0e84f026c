package media

import "errors"

var (
	// ErrEmptyTranscript indicates the upstream recognized nothing in the
	// media, as opposed to the service being unreachable.
	ErrEmptyTranscript = errors.New("no recognizable speech in media")
	// ErrTooLarge indicates the payload exceeds the configured max upload size.
	ErrTooLarge = errors.New("media exceeds the maximum upload size")
)
