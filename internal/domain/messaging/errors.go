package messaging

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message content is required")
	ErrMessageTooLong       = errors.New("message is too long")
	ErrForbidden            = errors.New("not a participant of this conversation")
)
