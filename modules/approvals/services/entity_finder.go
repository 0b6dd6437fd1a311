package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
)

// EntityFinder resolves ids coming from the API into entities of the caller's account.
// Entities of other accounts are reported exactly like missing ones.
type EntityFinder struct {
	tx         Transactor
	requests   request.Repository
	categories category.Repository
	comments   comment.Repository
}

func NewEntityFinder(
	tx Transactor,
	requests request.Repository,
	categories category.Repository,
	comments comment.Repository,
) *EntityFinder {
	return &EntityFinder{tx: tx, requests: requests, categories: categories, comments: comments}
}

func (s *EntityFinder) Request(ctx context.Context, accountID, id uuid.UUID) (Result[request.Request], error) {
	var found request.Request
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		var err error
		found, err = s.requests.GetByID(txCtx, accountID, id)
		return err
	})
	if errors.Is(err, request.ErrNotFound) {
		return notFound[request.Request](msgRequestNotFound), nil
	}
	if err != nil {
		return Result[request.Request]{}, err
	}
	return success(found), nil
}

// Category returns nil when the category does not exist in the account.
func (s *EntityFinder) Category(ctx context.Context, accountID, id uuid.UUID) (*category.Category, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var found category.Category
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		var err error
		found, err = s.categories.GetByID(txCtx, accountID, id)
		return err
	})
	if errors.Is(err, category.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (s *EntityFinder) Comment(ctx context.Context, accountID, id uuid.UUID) (Result[comment.Comment], error) {
	var found comment.Comment
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		var err error
		found, err = s.comments.GetByID(txCtx, accountID, id)
		return err
	})
	if errors.Is(err, comment.ErrNotFound) {
		return notFound[comment.Comment]("Comment not found"), nil
	}
	if err != nil {
		return Result[comment.Comment]{}, err
	}
	return success(found), nil
}
