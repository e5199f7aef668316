package service

import (
	"context"

	"healthlink-be/internal/repository/memory"
	"healthlink-be/internal/repository/specification"
	"healthlink-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IUserDirectory answers whether a user id refers to a real account. Lookups
// are cached so repeated sends to the same receiver skip the users table.
type IUserDirectory interface {
	Exists(ctx context.Context, userId uuid.UUID) (bool, error)
}

type userDirectory struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.DirectoryCache
}

func NewUserDirectory(uowFactory unitofwork.RepositoryFactory, cache *memory.DirectoryCache) IUserDirectory {
	return &userDirectory{
		uowFactory: uowFactory,
		cache:      cache,
	}
}

func (d *userDirectory) Exists(ctx context.Context, userId uuid.UUID) (bool, error) {
	if exists, found := d.cache.Get(userId); found {
		return exists, nil
	}

	uow := d.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.UserRepository().Count(ctx, specification.ByID{ID: userId})
	if err != nil {
		return false, err
	}

	exists := count > 0
	d.cache.Set(userId, exists)
	return exists, nil
}
