package authn

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/account"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
	"github.com/jacksonlee411/approvals/pkg/composables"
)

func TestUseUserAndAbility(t *testing.T) {
	ctx := context.Background()
	_, err := UseUser(ctx)
	require.ErrorIs(t, err, ErrNoUser)
	_, err = UseAbility(ctx)
	require.ErrorIs(t, err, ErrNoAbility)

	u := user.New(uuid.New(), "Ana", "ana@example.com", user.RoleEditor)
	ctx = WithUser(ctx, u)
	ctx = WithAbility(ctx, permissions.NewAbility(&u))

	gotUser, err := UseUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID(), gotUser.ID())

	ability, err := UseAbility(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.AccountID(), ability.AccountID())
}

func TestWithAccountBindsID(t *testing.T) {
	_, err := UseAccount(context.Background())
	require.ErrorIs(t, err, composables.ErrNoAccount)

	acc := account.New("Account A", "94.984.296/0001-76")
	ctx := WithAccount(context.Background(), acc)

	got, err := UseAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, acc.ID(), got.ID())

	id, err := composables.UseAccountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, acc.ID(), id)
}
