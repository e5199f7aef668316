package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByMembersKey matches a conversation by its canonical participant-set key.
// Set equality falls out of the key construction: same members, same key.
type ByMembersKey struct {
	MembersKey string
}

func (s ByMembersKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("members_key = ?", s.MembersKey)
}

type ByConversationID struct {
	ConversationID uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}
