package persistence

import (
	"context"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
)

type Transactor interface {
	InTx(ctx context.Context, fn func(context.Context) error) error
}

// Repositories groups one store's repositories with the transactor that scopes them.
type Repositories struct {
	Tx         Transactor
	Accounts   account.Repository
	Users      user.Repository
	Categories category.Repository
	Requests   request.Repository
	Comments   comment.Repository
}

func NewPgRepositories() Repositories {
	return Repositories{
		Tx:         NewPgTransactor(),
		Accounts:   NewAccountRepository(),
		Users:      NewUserRepository(),
		Categories: NewCategoryRepository(),
		Requests:   NewRequestRepository(),
		Comments:   NewCommentRepository(),
	}
}

func (s *InmemStore) Repositories() Repositories {
	return Repositories{
		Tx:         s,
		Accounts:   s.Accounts(),
		Users:      s.Users(),
		Categories: s.Categories(),
		Requests:   s.Requests(),
		Comments:   s.Comments(),
	}
}
