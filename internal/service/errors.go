package service

import "errors"

// Domain errors surfaced to callers. The HTTP layer maps these to status
// codes; the websocket layer echoes them back as error frames.
var (
	ErrInvalidRequest        = errors.New("sender and receiver must be present and distinct, with text or attachments")
	ErrInvalidParticipantSet = errors.New("conversation requires at least two distinct participants")
	ErrEmptyMessageContent   = errors.New("message must carry text or at least one attachment")
	ErrAttachmentTooLarge    = errors.New("attachment exceeds the configured size limit")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrReceiverNotFound      = errors.New("receiver does not exist")
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrFileNotFound          = errors.New("file not found")
	ErrAccessDenied          = errors.New("access denied")
)
