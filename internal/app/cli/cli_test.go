package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setSQLiteEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "donations.db")
	t.Setenv("APP_CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	t.Setenv("APP_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("APP_DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_DATABASE_DSN", dsn)
	return dsn
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHealthcheck_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/healthz", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	out, err := execute(t, "healthcheck", "--url", srv.URL+"/healthz")
	require.NoError(t, err)
	require.Contains(t, out, "ok")
}

func TestHealthcheck_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := execute(t, "healthcheck", "--url", srv.URL+"/healthz")
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestCreateAdmin_Idempotent(t *testing.T) {
	setSQLiteEnv(t)

	out, err := execute(t, "create-admin", "--email", "Admin@ToyLink.test", "--password", "s3cret")
	require.NoError(t, err)
	require.Contains(t, out, "created")

	out, err = execute(t, "create-admin", "--email", "admin@toylink.test", "--password", "other")
	require.NoError(t, err)
	require.Contains(t, out, "already exists")
}

func TestCreateAdmin_RequiresCredentials(t *testing.T) {
	setSQLiteEnv(t)

	_, err := execute(t, "create-admin")
	require.Error(t, err)
}

func TestWaitForDB_Ready(t *testing.T) {
	setSQLiteEnv(t)

	out, err := execute(t, "wait-for-db", "--timeout", "5s")
	require.NoError(t, err)
	require.Contains(t, out, "database is ready")
}

func TestWaitForDB_GivesUp(t *testing.T) {
	setSQLiteEnv(t)
	t.Setenv("APP_DATABASE_DRIVER", "oracle")

	_, err := execute(t, "wait-for-db", "--timeout", "50ms", "--interval", "10ms")
	require.Error(t, err)
	require.Contains(t, err.Error(), "did not become ready")
}
