package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthlink-be/internal/entity"
	"healthlink-be/internal/mapper"
	"healthlink-be/internal/model"
	"healthlink-be/internal/repository/contract"
	"healthlink-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// isUniqueViolation detects a uniqueness-constraint error from the postgres
// driver or GORM's translated form.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create conversation %s: %w", conversation.MembersKey, contract.ErrConversationExists)
		}
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) CreateMembers(ctx context.Context, members []*entity.ConversationMember) error {
	if len(members) == 0 {
		return nil
	}
	models := make([]*model.ConversationMember, len(members))
	for i, mem := range members {
		models[i] = r.mapper.MemberToModel(mem)
	}
	return r.db.WithContext(ctx).Create(models).Error
}

func (r *ConversationRepositoryImpl) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

func (r *ConversationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var m model.Conversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.Conversation, error) {
	subQuery := r.db.Table("conversation_members").Select("conversation_id").Where("user_id = ?", userId)

	var models []*model.Conversation
	err := r.db.WithContext(ctx).
		Where("id IN (?)", subQuery).
		Order("updated_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.Conversation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ConversationToEntity(m)
	}
	return entities, nil
}

func (r *ConversationRepositoryImpl) FindMembers(ctx context.Context, conversationId uuid.UUID) ([]*entity.ConversationMember, error) {
	var models []*model.ConversationMember
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.ConversationMember, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MemberToEntity(m)
	}
	return entities, nil
}

func (r *ConversationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Conversation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ConversationRepositoryImpl) CountMembers(ctx context.Context, conversationId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ConversationMember{}).
		Where("conversation_id = ?", conversationId).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
