package authn

import (
	"context"
	"errors"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
	"github.com/jacksonlee411/approvals/pkg/composables"
	"github.com/jacksonlee411/approvals/pkg/constants"
)

var (
	ErrNoUser    = errors.New("no user found in context")
	ErrNoAbility = errors.New("no ability found in context")
)

// WithAccount binds the caller's account entity and its id.
func WithAccount(ctx context.Context, acc account.Account) context.Context {
	ctx = context.WithValue(ctx, constants.AccountKey, acc)
	return composables.WithAccountID(ctx, acc.ID())
}

func UseAccount(ctx context.Context) (account.Account, error) {
	acc, ok := ctx.Value(constants.AccountKey).(account.Account)
	if !ok {
		return account.Account{}, composables.ErrNoAccount
	}
	return acc, nil
}

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, constants.UserKey, u)
}

func UseUser(ctx context.Context) (user.User, error) {
	u, ok := ctx.Value(constants.UserKey).(user.User)
	if !ok {
		return user.User{}, ErrNoUser
	}
	return u, nil
}

func WithAbility(ctx context.Context, ability permissions.Ability) context.Context {
	return context.WithValue(ctx, constants.AbilityKey, ability)
}

func UseAbility(ctx context.Context) (permissions.Ability, error) {
	a, ok := ctx.Value(constants.AbilityKey).(permissions.Ability)
	if !ok {
		return permissions.Ability{}, ErrNoAbility
	}
	return a, nil
}
