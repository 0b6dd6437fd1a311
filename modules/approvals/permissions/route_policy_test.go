package permissions_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
	"github.com/jacksonlee411/approvals/pkg/authz"
)

// The casbin route policy and the role abilities must grant the same class-level
// capabilities, otherwise the route gate and the services disagree on who may act.
func TestRoutePolicyMatchesAbilities(t *testing.T) {
	svc, err := authz.NewService(authz.Config{FlagProvider: authz.StaticFlagProvider(authz.ModeEnforce)})
	require.NoError(t, err)

	accountID := uuid.New()
	for _, role := range []user.Role{user.RoleViewer, user.RoleEditor, user.RoleAdmin} {
		u := user.New(accountID, "Policy", "policy@example.com", role)
		ability := permissions.NewAbility(&u)
		for _, kind := range permissions.Kinds {
			for _, action := range permissions.Actions {
				t.Run(fmt.Sprintf("%s/%s/%s", role, kind, action), func(t *testing.T) {
					req := authz.NewRequest(
						authz.SubjectForRole(string(role)),
						authz.DomainFromAccount(accountID),
						kind.Object(),
						authz.NormalizeAction(string(action)),
					)
					allowed, err := svc.Check(context.Background(), req)
					require.NoError(t, err)
					assert.Equal(t, ability.CanKind(action, kind), allowed)
				})
			}
		}
	}
}
