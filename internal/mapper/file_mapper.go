package mapper

import (
	"encoding/json"

	"healthlink-be/internal/entity"
	"healthlink-be/internal/model"

	"gorm.io/datatypes"
)

type FileMapper struct{}

func NewFileMapper() *FileMapper {
	return &FileMapper{}
}

func (m *FileMapper) FileToEntity(f *model.File) *entity.File {
	if f == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(f.Metadata) > 0 {
		// Best effort; malformed metadata is dropped rather than failing reads.
		_ = json.Unmarshal(f.Metadata, &metadata)
	}

	return &entity.File{
		Id:        f.Id,
		MimeType:  f.MimeType,
		FileName:  f.FileName,
		SizeBytes: f.SizeBytes,
		Content:   f.Content,
		Metadata:  metadata,
		CreatedAt: f.CreatedAt,
	}
}

func (m *FileMapper) FileToModel(f *entity.File) *model.File {
	if f == nil {
		return nil
	}

	var metadata datatypes.JSON
	if f.Metadata != nil {
		raw, err := json.Marshal(f.Metadata)
		if err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.File{
		Id:        f.Id,
		MimeType:  f.MimeType,
		FileName:  f.FileName,
		SizeBytes: f.SizeBytes,
		Content:   f.Content,
		Metadata:  metadata,
		CreatedAt: f.CreatedAt,
	}
}

func (m *FileMapper) AssociationToEntity(a *model.FileAssociation) *entity.FileAssociation {
	if a == nil {
		return nil
	}
	return &entity.FileAssociation{
		Id:         a.Id,
		FileId:     a.FileId,
		TargetKind: a.TargetKind,
		TargetId:   a.TargetId,
		CreatedAt:  a.CreatedAt,
		File:       m.FileToEntity(a.File),
	}
}

func (m *FileMapper) AssociationToModel(a *entity.FileAssociation) *model.FileAssociation {
	if a == nil {
		return nil
	}
	return &model.FileAssociation{
		Id:         a.Id,
		FileId:     a.FileId,
		TargetKind: a.TargetKind,
		TargetId:   a.TargetId,
		CreatedAt:  a.CreatedAt,
	}
}
