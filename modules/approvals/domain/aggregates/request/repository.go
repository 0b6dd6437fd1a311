package request

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("request not found")
	// ErrStaleStatus is returned by Transition when the stored status no longer
	// matches the one the caller observed.
	ErrStaleStatus = errors.New("request status changed concurrently")
	// ErrReferenceMissing means the user or category row no longer exists.
	ErrReferenceMissing = errors.New("request references a missing user or category")
)

// FindParams narrows a listing. Zero values are ignored except AccountID, which is required.
type FindParams struct {
	AccountID  uuid.UUID
	Status     Status
	CategoryID uuid.UUID
	Limit      int
	Offset     int
}

type Repository interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (Request, error)
	List(ctx context.Context, params *FindParams) ([]Request, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, r Request) (Request, error)
	// Transition applies fn to the stored request only if its status still equals from.
	Transition(ctx context.Context, accountID, id uuid.UUID, from Status, fn func(Request) Request) (Request, error)
}
