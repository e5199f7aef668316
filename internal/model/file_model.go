package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type File struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	MimeType  string         `gorm:"type:varchar(255);not null"`
	FileName  *string        `gorm:"type:varchar(512)"`
	SizeBytes int64          `gorm:"not null;default:0"`
	Content   []byte         `gorm:"type:bytea"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (File) TableName() string {
	return "files"
}

type FileAssociation struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FileId     uuid.UUID `gorm:"type:uuid;not null;index"`
	TargetKind string    `gorm:"type:varchar(50);not null;index:idx_file_associations_target"`
	TargetId   uuid.UUID `gorm:"type:uuid;not null;index:idx_file_associations_target"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	File *File `gorm:"foreignKey:FileId"`
}

func (FileAssociation) TableName() string {
	return "file_associations"
}
