package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id         uuid.UUID
	MembersKey string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

type ConversationMember struct {
	UserId         uuid.UUID
	ConversationId uuid.UUID
	CreatedAt      time.Time
}

// DistinctParticipants collapses duplicate ids while keeping first-seen order.
func DistinctParticipants(participantIds []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(participantIds))
	distinct := make([]uuid.UUID, 0, len(participantIds))
	for _, id := range participantIds {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	return distinct
}

// MembersKey builds the canonical order-independent key for a participant set:
// distinct ids, sorted textually, joined with ':'. The key backs the UNIQUE
// index that makes conversation creation idempotent under concurrent sends.
func MembersKey(participantIds []uuid.UUID) string {
	distinct := DistinctParticipants(participantIds)
	ids := make([]string, 0, len(distinct))
	for _, id := range distinct {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}
