package contract

import (
	"context"

	"healthlink-be/internal/entity"
	"healthlink-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	// Create inserts the conversation row. A members-key collision is
	// reported as ErrConversationExists.
	Create(ctx context.Context, conversation *entity.Conversation) error
	CreateMembers(ctx context.Context, members []*entity.ConversationMember) error
	Touch(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.Conversation, error)
	FindMembers(ctx context.Context, conversationId uuid.UUID) ([]*entity.ConversationMember, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountMembers(ctx context.Context, conversationId uuid.UUID) (int64, error)
}
