package entity

import (
	"time"

	"github.com/google/uuid"
)

// Association target kinds. Files are linked to their owner through a tagged
// (kind, target id) pair so other entity kinds can reuse the file storage
// without schema changes.
const (
	AssociationTargetMessage = "message"
)

type File struct {
	Id        uuid.UUID
	MimeType  string
	FileName  *string
	SizeBytes int64
	Content   []byte
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

type FileAssociation struct {
	Id         uuid.UUID
	FileId     uuid.UUID
	TargetKind string
	TargetId   uuid.UUID
	CreatedAt  time.Time

	// File carries metadata only when hydrated by the repository; Content is
	// never loaded through association lookups.
	File *File
}
