package contract

import (
	"context"

	"healthlink-be/internal/entity"
	"healthlink-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FileRepository interface {
	Create(ctx context.Context, file *entity.File) error
	CreateAssociation(ctx context.Context, association *entity.FileAssociation) error
	// FindOne loads the full file row including content.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.File, error)
	// FindAssociationsByTarget returns associations for the given target kind
	// and ids with file metadata hydrated (content omitted).
	FindAssociationsByTarget(ctx context.Context, targetKind string, targetIds []uuid.UUID) ([]*entity.FileAssociation, error)
	FindAssociationsByFileId(ctx context.Context, fileId uuid.UUID) ([]*entity.FileAssociation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	CountAssociations(ctx context.Context, specs ...specification.Specification) (int64, error)
}
