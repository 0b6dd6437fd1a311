package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
)

// RequestFilter narrows a request listing. Zero values are ignored; either AccountID or
// Account must identify the account. A Limit of zero or less lists every match.
type RequestFilter struct {
	AccountID  uuid.UUID
	Account    *account.Account
	Status     request.Status
	CategoryID uuid.UUID
	Limit      int
	Offset     int
}

func (f RequestFilter) accountID() uuid.UUID {
	if f.AccountID != uuid.Nil {
		return f.AccountID
	}
	if f.Account != nil {
		return f.Account.ID()
	}
	return uuid.Nil
}

type RequestPage struct {
	Requests []request.Request
	Total    int64
	Limit    int
	Offset   int
}

type RequestLister struct {
	tx       Transactor
	requests request.Repository
}

func NewRequestLister(tx Transactor, requests request.Repository) *RequestLister {
	return &RequestLister{tx: tx, requests: requests}
}

// List returns the requests readable by ability that match filter, newest first.
func (s *RequestLister) List(ctx context.Context, ability *permissions.Ability, filter RequestFilter) (Result[RequestPage], error) {
	res, err := s.list(ctx, ability, filter)
	return observe(OpListRequests, res, err)
}

func (s *RequestLister) list(ctx context.Context, ability *permissions.Ability, filter RequestFilter) (Result[RequestPage], error) {
	accountID := filter.accountID()
	if accountID == uuid.Nil {
		return missingParam[RequestPage]("account_id"), nil
	}
	if ability == nil {
		return missingParam[RequestPage]("ability"), nil
	}

	limit, offset := max(filter.Limit, 0), max(filter.Offset, 0)
	page := RequestPage{Requests: []request.Request{}, Limit: limit, Offset: offset}

	scoped, ok := ability.RequestScope().Restrict(accountID)
	if !ok {
		return success(page), nil
	}

	params := &request.FindParams{
		AccountID:  scoped,
		Status:     filter.Status,
		CategoryID: filter.CategoryID,
		Limit:      limit,
		Offset:     offset,
	}
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		found, err := s.requests.List(txCtx, params)
		if err != nil {
			return err
		}
		total, err := s.requests.Count(txCtx, params)
		if err != nil {
			return err
		}
		if found != nil {
			page.Requests = found
		}
		page.Total = total
		return nil
	})
	if err != nil {
		return Result[RequestPage]{}, err
	}
	return success(page), nil
}

type CommentLister struct {
	tx       Transactor
	comments comment.Repository
}

func NewCommentLister(tx Transactor, comments comment.Repository) *CommentLister {
	return &CommentLister{tx: tx, comments: comments}
}

// List returns the comments readable by ability, optionally narrowed to active ones and
// to the given requests.
func (s *CommentLister) List(
	ctx context.Context,
	ability *permissions.Ability,
	active *bool,
	requestIDs ...uuid.UUID,
) (Result[[]comment.Comment], error) {
	res, err := s.list(ctx, ability, active, requestIDs)
	return observe(OpListComments, res, err)
}

func (s *CommentLister) list(
	ctx context.Context,
	ability *permissions.Ability,
	active *bool,
	requestIDs []uuid.UUID,
) (Result[[]comment.Comment], error) {
	if ability == nil {
		return missingParam[[]comment.Comment]("ability"), nil
	}
	scoped, ok := ability.CommentScope().Restrict(uuid.Nil)
	if !ok {
		return success([]comment.Comment{}), nil
	}

	params := &comment.FindParams{AccountID: scoped, Active: active, RequestIDs: requestIDs}
	out := []comment.Comment{}
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		found, err := s.comments.List(txCtx, params)
		if err != nil {
			return err
		}
		if found != nil {
			out = found
		}
		return nil
	})
	if err != nil {
		return Result[[]comment.Comment]{}, err
	}
	return success(out), nil
}
