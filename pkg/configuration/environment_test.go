package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "APPROVALS_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "modules", "approvals")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(sub))

	_ = os.Unsetenv("APPROVALS_TEST_ENV_LOAD")
	t.Cleanup(func() { _ = os.Unsetenv("APPROVALS_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "ok", os.Getenv("APPROVALS_TEST_ENV_LOAD"))
}

func TestLoad_Defaults(t *testing.T) {
	conf, err := Load()
	require.NoError(t, err)
	t.Cleanup(conf.Unload)

	assert.Equal(t, StorePostgres, conf.Store)
	assert.Equal(t, "disabled", conf.RLSEnforce)
	assert.Equal(t, "X-Account-Id", conf.AccountIDHeader)
	assert.Equal(t, "X-User-Id", conf.UserIDHeader)
	assert.False(t, conf.Approvals.StrictTransitions)
	assert.Equal(t, "localhost:3200", conf.SocketAddress)
	assert.NotNil(t, conf.Logger())
	assert.Contains(t, conf.Database.Opts, "dbname=approvals")
}

func TestLoad_RejectsInvalidStore(t *testing.T) {
	t.Setenv("STORE", "sqlite")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE")
}

func TestLoad_RejectsRLSWithSuperuser(t *testing.T) {
	t.Setenv("RLS_ENFORCE", "enforce")
	t.Setenv("DB_USER", "postgres")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_StrictTransitionsFlag(t *testing.T) {
	t.Setenv("APPROVALS_STRICT_TRANSITIONS", "true")
	t.Setenv("STORE", "Memory")
	conf, err := Load()
	require.NoError(t, err)
	assert.True(t, conf.Approvals.StrictTransitions)
	assert.Equal(t, StoreMemory, conf.Store)
}

func TestRateLimitOptions_Validate(t *testing.T) {
	opts := RateLimitOptions{GlobalRPS: 10, Storage: "redis"}
	require.Error(t, opts.Validate())

	opts.RedisURL = "localhost:6379"
	require.NoError(t, opts.Validate())

	opts.GlobalRPS = -1
	require.Error(t, opts.Validate())
}

func TestLogrusLogLevel(t *testing.T) {
	c := &Configuration{Log: LogOptions{Level: "debug"}}
	assert.Equal(t, "debug", c.LogrusLogLevel().String())
	c.Log.Level = "bogus"
	assert.Equal(t, "error", c.LogrusLogLevel().String())
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}
