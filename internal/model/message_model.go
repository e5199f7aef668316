package model

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderId       uuid.UUID `gorm:"type:uuid;not null"`
	ReceiverId     uuid.UUID `gorm:"type:uuid;not null"`
	Text           *string   `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Message) TableName() string {
	return "messages"
}
