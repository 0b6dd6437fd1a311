package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("account not found")
	ErrTaxIDTaken  = errors.New("account tax id already taken")
	ErrHasChildren = errors.New("account still has users, categories, requests or comments")
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	GetByTaxID(ctx context.Context, taxID string) (Account, error)
	List(ctx context.Context) ([]Account, error)
	Create(ctx context.Context, a Account) (Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
