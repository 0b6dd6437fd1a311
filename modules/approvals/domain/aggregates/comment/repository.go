package comment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("comment not found")
	ErrReferenceMissing = errors.New("comment references a missing request or user")
)

type FindParams struct {
	AccountID  uuid.UUID
	Active     *bool
	RequestIDs []uuid.UUID
}

type Repository interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (Comment, error)
	List(ctx context.Context, params *FindParams) ([]Comment, error)
	Create(ctx context.Context, c Comment) (Comment, error)
	Delete(ctx context.Context, accountID, id uuid.UUID) error
}
