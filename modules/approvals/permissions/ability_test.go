package permissions_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/comment"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/request"
	"github.com/jacksonlee411/approvals/modules/approvals/domain/aggregates/user"
	"github.com/jacksonlee411/approvals/modules/approvals/permissions"
	"github.com/jacksonlee411/approvals/pkg/serrors"
)

func newUser(accountID uuid.UUID, role user.Role) *user.User {
	u := user.New(accountID, string(role), string(role)+"@example.com", role)
	return &u
}

func requestTarget(accountID uuid.UUID, status request.Status) permissions.Target {
	return permissions.ForRequest(request.New(accountID, uuid.New(), uuid.New(), "t", request.WithStatus(status)))
}

func TestAbility_RoleMatrix(t *testing.T) {
	accountID := uuid.New()

	cases := []struct {
		role    user.Role
		kind    permissions.Kind
		allowed []permissions.Action
	}{
		{user.RoleAdmin, permissions.KindRequest, permissions.Actions},
		{user.RoleAdmin, permissions.KindComment, permissions.Actions},
		{user.RoleEditor, permissions.KindRequest, []permissions.Action{permissions.ActionRead, permissions.ActionCreate, permissions.ActionSubmit}},
		{user.RoleEditor, permissions.KindComment, []permissions.Action{permissions.ActionRead, permissions.ActionCreate}},
		{user.RoleViewer, permissions.KindRequest, []permissions.Action{permissions.ActionRead}},
		{user.RoleViewer, permissions.KindComment, []permissions.Action{permissions.ActionRead}},
	}

	for _, tc := range cases {
		ability := permissions.NewAbility(newUser(accountID, tc.role))
		target := permissions.Target{Kind: tc.kind, AccountID: accountID, Status: request.StatusDraft}
		for _, action := range permissions.Actions {
			want := false
			for _, a := range tc.allowed {
				if a == action {
					want = true
				}
			}
			assert.Equal(t, want, ability.Can(action, target), "%s %s %s", tc.role, action, tc.kind)
			assert.Equal(t, want, ability.CanKind(action, tc.kind), "class-level %s %s %s", tc.role, action, tc.kind)
		}
	}
}

func TestAbility_EditorSubmitOnlyDrafts(t *testing.T) {
	accountID := uuid.New()
	editor := permissions.NewAbility(newUser(accountID, user.RoleEditor))

	for _, status := range request.Statuses {
		want := status == request.StatusDraft
		assert.Equal(t, want, editor.Can(permissions.ActionSubmit, requestTarget(accountID, status)), status)
	}
	assert.True(t, editor.CanKind(permissions.ActionSubmit, permissions.KindRequest))
}

func TestAbility_CrossAccountAlwaysDenied(t *testing.T) {
	own := uuid.New()
	other := uuid.New()

	for _, role := range user.Roles {
		ability := permissions.NewAbility(newUser(own, role))
		for _, action := range permissions.Actions {
			assert.False(t, ability.Can(action, requestTarget(other, request.StatusDraft)), "%s %s", role, action)
			c := comment.New(other, uuid.New(), uuid.New(), "hi")
			assert.False(t, ability.Can(action, permissions.ForComment(c)), "%s %s", role, action)
		}
	}
}

func TestAbility_NilUserDeniesAll(t *testing.T) {
	ability := permissions.NewAbility(nil)
	assert.True(t, ability.IsZero())

	for _, action := range permissions.Actions {
		for _, kind := range permissions.Kinds {
			assert.False(t, ability.CanKind(action, kind))
			assert.False(t, ability.Can(action, permissions.Target{Kind: kind}))
		}
	}
	assert.False(t, ability.RequestScope().Readable)
}

func TestAbility_AuthorizeReturnsForbidden(t *testing.T) {
	accountID := uuid.New()
	viewer := permissions.NewAbility(newUser(accountID, user.RoleViewer))

	err := viewer.Authorize(permissions.ActionApprove, requestTarget(accountID, request.StatusPendingApproval))
	require.Error(t, err)

	var baseErr *serrors.BaseError
	require.ErrorAs(t, err, &baseErr)
	assert.Equal(t, "FORBIDDEN", baseErr.Code)
	assert.Equal(t, http.StatusForbidden, baseErr.Status)
	assert.Equal(t, "approve", baseErr.TemplateData["action"])
	assert.Equal(t, "request", baseErr.TemplateData["kind"])

	require.NoError(t, viewer.Authorize(permissions.ActionRead, requestTarget(accountID, request.StatusApproved)))
	require.NoError(t, viewer.AuthorizeKind(permissions.ActionRead, permissions.KindComment))
	require.Error(t, viewer.AuthorizeKind(permissions.ActionCreate, permissions.KindComment))
}

func TestScope_Restrict(t *testing.T) {
	accountID := uuid.New()
	scope := permissions.NewAbility(newUser(accountID, user.RoleViewer)).RequestScope()

	got, ok := scope.Restrict(accountID)
	assert.True(t, ok)
	assert.Equal(t, accountID, got)

	_, ok = scope.Restrict(uuid.New())
	assert.False(t, ok)

	got, ok = scope.Restrict(uuid.Nil)
	assert.True(t, ok)
	assert.Equal(t, accountID, got)
}
