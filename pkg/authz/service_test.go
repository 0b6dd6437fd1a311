package authz

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacksonlee411/approvals/pkg/serrors"
)

func newTestService(t *testing.T, mode Mode) *Service {
	t.Helper()
	svc, err := NewService(Config{FlagProvider: StaticFlagProvider(mode)})
	require.NoError(t, err)
	return svc
}

func requestFor(role, resource, action string) Request {
	return NewRequest(
		SubjectForRole(role),
		DomainFromAccount(uuid.MustParse("f6f8b13e-755f-41e0-af1a-f2671e40c15c")),
		ObjectName("approvals", resource),
		NormalizeAction(action),
	)
}

func TestServiceAuthorize(t *testing.T) {
	svc := newTestService(t, ModeEnforce)
	require.NoError(t, svc.Authorize(context.Background(), requestFor("editor", "requests", "submit")))
	require.NoError(t, svc.Authorize(context.Background(), requestFor("admin", "comments", "destroy")))
}

func TestServiceAuthorizeDenied(t *testing.T) {
	svc := newTestService(t, ModeEnforce)
	err := svc.Authorize(context.Background(), requestFor("viewer", "requests", "create"))
	require.Error(t, err)

	var baseErr *serrors.BaseError
	require.ErrorAs(t, err, &baseErr)
	assert.Equal(t, "AUTHZ_FORBIDDEN", baseErr.Code)
	assert.Equal(t, 403, baseErr.Status)
	assert.Equal(t, "approvals.requests", baseErr.TemplateData["object"])
}

func TestServiceAuthorizeShadowMode(t *testing.T) {
	svc := newTestService(t, ModeShadow)
	require.NoError(t, svc.Authorize(context.Background(), requestFor("viewer", "requests", "approve")))

	allowed, err := svc.Check(context.Background(), requestFor("viewer", "requests", "approve"))
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestServiceMode(t *testing.T) {
	svc := newTestService(t, ModeDisabled)
	require.Equal(t, ModeDisabled, svc.Mode())
	require.NoError(t, svc.Authorize(context.Background(), requestFor("", "requests", "approve")))
}

func TestServiceInspect(t *testing.T) {
	svc := newTestService(t, ModeEnforce)
	res, err := svc.Inspect(context.Background(), requestFor("admin", "requests", "approve"))
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, ModeEnforce, res.Mode)
	assert.Equal(t, []string{"role:admin", "*", "approvals.requests", "*"}, res.Trace)
}

func TestNewService_FilePolicy(t *testing.T) {
	dir := t.TempDir()
	modelText, err := builtinPolicy.ReadFile("policy/model.conf")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.conf"), modelText, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy.csv"), []byte("p, role:viewer, *, approvals.requests, create\n"), 0o644))

	svc, err := NewService(Config{
		ModelPath:    filepath.Join(dir, "model.conf"),
		PolicyPath:   filepath.Join(dir, "policy.csv"),
		FlagProvider: StaticFlagProvider(ModeEnforce),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Authorize(context.Background(), requestFor("viewer", "requests", "create")))
}

func TestConfigValidate(t *testing.T) {
	_, err := NewService(Config{ModelPath: "model.conf", FlagMode: ModeShadow})
	require.Error(t, err)
	_, err = NewService(Config{})
	require.Error(t, err)
}

func TestFileFlagProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authz_flags.yaml")
	provider := NewFileFlagProvider(path, ModeShadow)
	assert.Equal(t, ModeShadow, provider.Mode())

	require.NoError(t, os.WriteFile(path, []byte("mode: enforce\n"), 0o644))
	assert.Equal(t, ModeEnforce, provider.Mode())

	require.NoError(t, os.WriteFile(path, []byte("mode: bogus\n"), 0o644))
	assert.Equal(t, ModeShadow, provider.Mode())
}

func TestTypes(t *testing.T) {
	assert.Equal(t, "role:admin", SubjectForRole("Admin"))
	assert.Equal(t, "role:admin", SubjectForRole("role:admin"))
	assert.Equal(t, "global", DomainFromAccount(uuid.Nil))
	assert.Equal(t, "approvals.requests", ObjectName("APPROVALS", "Requests"))
	assert.Equal(t, "global.resource", ObjectName("", ""))
	assert.Equal(t, "*", NormalizeAction(""))

	req := NewRequest("role:viewer", "global", "approvals.requests", "read")
	assert.Equal(t, "approvals.requests", req.Object)
	assert.NotNil(t, req.Attributes)
	assert.Empty(t, req.Attributes)
}
