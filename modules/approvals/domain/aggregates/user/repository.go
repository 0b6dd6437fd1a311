package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email has already been taken")
)

type Repository interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (User, error)
	GetByIDs(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]User, error)
	GetByEmail(ctx context.Context, accountID uuid.UUID, email string) (User, error)
	List(ctx context.Context, accountID uuid.UUID) ([]User, error)
	Create(ctx context.Context, u User) (User, error)
}
