package archive

import "errors"

// Sentinel errors for the command-facing gates. These are terminal and local:
// they are reported to the user and change no state.
var (
	// ErrPermissionDenied is returned when the actor is not the server owner.
	ErrPermissionDenied = errors.New("permission denied: server owner required")
	// ErrNotConfigured is returned when the server has no authorized upload
	// channel, or the request targets a different channel.
	ErrNotConfigured = errors.New("channel not configured for uploads")
	// ErrInvalidAttachment is returned when a message does not carry exactly
	// one video attachment.
	ErrInvalidAttachment = errors.New("message must carry exactly one video attachment")
)
