package implementation

import (
	"context"
	"errors"

	"healthlink-be/internal/entity"
	"healthlink-be/internal/mapper"
	"healthlink-be/internal/model"
	"healthlink-be/internal/repository/contract"
	"healthlink-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FileMapper
}

func NewFileRepository(db *gorm.DB) contract.FileRepository {
	return &FileRepositoryImpl{
		db:     db,
		mapper: mapper.NewFileMapper(),
	}
}

func (r *FileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FileRepositoryImpl) Create(ctx context.Context, file *entity.File) error {
	m := r.mapper.FileToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.FileToEntity(m)
	return nil
}

func (r *FileRepositoryImpl) CreateAssociation(ctx context.Context, association *entity.FileAssociation) error {
	m := r.mapper.AssociationToModel(association)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*association = *r.mapper.AssociationToEntity(m)
	return nil
}

func (r *FileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.File, error) {
	var m model.File
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.FileToEntity(&m), nil
}

func (r *FileRepositoryImpl) FindAssociationsByTarget(ctx context.Context, targetKind string, targetIds []uuid.UUID) ([]*entity.FileAssociation, error) {
	if len(targetIds) == 0 {
		return []*entity.FileAssociation{}, nil
	}

	var models []*model.FileAssociation
	err := r.db.WithContext(ctx).
		Preload("File", func(db *gorm.DB) *gorm.DB {
			// Metadata view only; content stays in the database.
			return db.Select("id", "mime_type", "file_name", "size_bytes", "metadata", "created_at")
		}).
		Where("target_kind = ? AND target_id IN ?", targetKind, targetIds).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.FileAssociation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.AssociationToEntity(m)
	}
	return entities, nil
}

func (r *FileRepositoryImpl) FindAssociationsByFileId(ctx context.Context, fileId uuid.UUID) ([]*entity.FileAssociation, error) {
	var models []*model.FileAssociation
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileId).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.FileAssociation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.AssociationToEntity(m)
	}
	return entities, nil
}

func (r *FileRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.File{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FileRepositoryImpl) CountAssociations(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.FileAssociation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
