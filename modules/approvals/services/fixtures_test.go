package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/category"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/infrastructure/persistence"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
)

type tenant struct {
	account  account.Account
	viewer   user.User
	editor   user.User
	admin    user.User
	hardware category.Category
	software category.Category
}

type fixture struct {
	t     *testing.T
	store *persistence.InmemStore
	a     tenant
	b     tenant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, store: persistence.NewInmemStore()}
	f.a = f.seedTenant("Account A", "94.984.296/0001-76")
	f.b = f.seedTenant("Account B", "11.222.333/0001-81")
	return f
}

func (f *fixture) seedTenant(name, taxID string) tenant {
	f.t.Helper()
	ctx := context.Background()
	acc, err := f.store.Accounts().Create(ctx, account.New(name, taxID))
	require.NoError(f.t, err)

	mkUser := func(role user.Role) user.User {
		u, err := f.store.Users().Create(ctx, user.New(acc.ID(), string(role)+" user", string(role)+"@example.com", role))
		require.NoError(f.t, err)
		return u
	}
	mkCategory := func(name string) category.Category {
		c, err := f.store.Categories().Create(ctx, category.New(acc.ID(), name))
		require.NoError(f.t, err)
		return c
	}

	return tenant{
		account:  acc,
		viewer:   mkUser(user.RoleViewer),
		editor:   mkUser(user.RoleEditor),
		admin:    mkUser(user.RoleAdmin),
		hardware: mkCategory("Hardware"),
		software: mkCategory("Software"),
	}
}

func (f *fixture) creator() *RequestCreator {
	return NewRequestCreator(f.store, f.store.Requests())
}

func (f *fixture) createRequest(tn tenant, title string, cat category.Category) request.Request {
	f.t.Helper()
	res, err := f.creator().Create(context.Background(), &tn.account, &tn.editor, title, &cat, "")
	require.NoError(f.t, err)
	require.True(f.t, res.Success, "create failed: %+v", res.Err)
	return res.Payload
}

func (f *fixture) submitted(tn tenant, title string) request.Request {
	f.t.Helper()
	req := f.createRequest(tn, title, tn.hardware)
	res, err := NewRequestSubmitter(f.store, f.store.Requests()).Submit(context.Background(), &tn.account, req.ID())
	require.NoError(f.t, err)
	require.True(f.t, res.Success)
	return res.Payload
}

func abilityOf(u user.User) *permissions.Ability {
	ability := permissions.NewAbility(&u)
	return &ability
}

func requireFailure[T any](t *testing.T, res Result[T], code int, message string) {
	t.Helper()
	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	require.Equal(t, code, res.Err.Code)
	require.Equal(t, message, res.Err.Message)
}
