package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
)

type RequestCreator struct {
	tx       Transactor
	requests request.Repository
}

func NewRequestCreator(tx Transactor, requests request.Repository) *RequestCreator {
	return &RequestCreator{tx: tx, requests: requests}
}

// Create stores a new draft request owned by u inside acc.
func (s *RequestCreator) Create(
	ctx context.Context,
	acc *account.Account,
	u *user.User,
	title string,
	cat *category.Category,
	description string,
) (Result[request.Request], error) {
	res, err := s.create(ctx, acc, u, title, cat, description)
	return observe(OpCreateRequest, res, err)
}

func (s *RequestCreator) create(
	ctx context.Context,
	acc *account.Account,
	u *user.User,
	title string,
	cat *category.Category,
	description string,
) (Result[request.Request], error) {
	switch {
	case acc == nil:
		return missingParam[request.Request]("account"), nil
	case u == nil:
		return missingParam[request.Request]("user"), nil
	case strings.TrimSpace(title) == "":
		return missingParam[request.Request]("title"), nil
	case cat == nil:
		return missingParam[request.Request]("category"), nil
	}
	if u.AccountID() != acc.ID() {
		return unprocessable[request.Request]("User does not belong to account"), nil
	}
	if cat.AccountID() != acc.ID() {
		return unprocessable[request.Request]("Category does not belong to account"), nil
	}

	entity := request.New(acc.ID(), u.ID(), cat.ID(), title, request.WithDescription(description))
	if err := entity.Validate(); err != nil {
		return invalid[request.Request](err)
	}

	var created request.Request
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.requests.Create(txCtx, entity)
		return err
	})
	if errors.Is(err, request.ErrReferenceMissing) {
		return unprocessable[request.Request]("User or category no longer exists"), nil
	}
	if err != nil {
		return Result[request.Request]{}, err
	}

	audit(ctx, OpCreateRequest, acc.ID(), created.ID(), nil, auditRequest(created))
	return success(created), nil
}
