package category

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("category not found")

type Repository interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (Category, error)
	GetByIDs(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]Category, error)
	GetByName(ctx context.Context, accountID uuid.UUID, name string) (Category, error)
	List(ctx context.Context, accountID uuid.UUID) ([]Category, error)
	Create(ctx context.Context, c Category) (Category, error)
}
