package dto

import (
	"time"

	"github.com/google/uuid"
)

type AttachmentInput struct {
	MimeType string  `json:"mime_type" validate:"required"`
	FileName *string `json:"file_name"`
	Content  []byte  `json:"content" validate:"required"` // base64 over JSON
}

type SendMessageRequest struct {
	ReceiverId  uuid.UUID         `json:"receiver_id" validate:"required"`
	Text        *string           `json:"text"`
	Attachments []AttachmentInput `json:"attachments" validate:"dive"`
}

type AttachmentResponse struct {
	FileId    uuid.UUID `json:"file_id"`
	MimeType  string    `json:"mime_type"`
	FileName  *string   `json:"file_name,omitempty"`
	SizeBytes int64     `json:"size_bytes"`
}

type MessageResponse struct {
	Id             uuid.UUID            `json:"id"`
	ConversationId uuid.UUID            `json:"conversation_id"`
	SenderId       uuid.UUID            `json:"sender_id"`
	ReceiverId     uuid.UUID            `json:"receiver_id"`
	Text           *string              `json:"text,omitempty"`
	Attachments    []AttachmentResponse `json:"attachments"`
	CreatedAt      time.Time            `json:"created_at"`
}

type ConversationResponse struct {
	Id        uuid.UUID   `json:"id"`
	MemberIds []uuid.UUID `json:"member_ids"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

type FileDownloadResponse struct {
	Id       uuid.UUID `json:"id"`
	MimeType string    `json:"mime_type"`
	FileName *string   `json:"file_name,omitempty"`
	Content  []byte    `json:"content"`
}

// MessageCreatedEvent rides the in-process delivery topic after a message has
// been durably committed.
type MessageCreatedEvent struct {
	ReceiverId uuid.UUID       `json:"receiver_id"`
	Message    MessageResponse `json:"message"`
}
