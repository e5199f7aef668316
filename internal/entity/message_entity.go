package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	SenderId       uuid.UUID
	ReceiverId     uuid.UUID
	Text           *string
	Attachments    []*Attachment
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// Attachment is the metadata view of a file linked to a message. Raw content
// is fetched separately through the file download path.
type Attachment struct {
	FileId    uuid.UUID
	MimeType  string
	FileName  *string
	SizeBytes int64
}

// HasContent reports the text-or-attachments invariant: a message must carry
// non-empty text or at least one attachment.
func (m *Message) HasContent() bool {
	if m.Text != nil && *m.Text != "" {
		return true
	}
	return len(m.Attachments) > 0
}
