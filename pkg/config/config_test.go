package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("APP_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("APP_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, 8888, cfg.Server.Port)
	require.Equal(t, DBDriverPostgres, cfg.Database.Driver)
	require.Equal(t, 10*time.Second, cfg.MercadoPago.Timeout)
	require.Equal(t, "doacao@example.com", cfg.MercadoPago.PayerEmail)
	require.Equal(t, "00000000000", cfg.MercadoPago.PayerTaxID)
	require.Equal(t, 20, cfg.Dashboard.PageSize)
}

func TestNew_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9000
database:
  driver: sqlite
  dsn: "file::memory:"
mercadopago:
  timeout: 3s
`), 0o600))
	t.Setenv("APP_CONFIG_FILE", file)
	t.Setenv("APP_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("APP_MERCADOPAGO_ACCESS_TOKEN", "token-from-env")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, DBDriverSQLite, cfg.Database.Driver)
	require.Equal(t, 3*time.Second, cfg.MercadoPago.Timeout)
	require.Equal(t, "token-from-env", cfg.MercadoPago.AccessToken)
}

func TestNew_LoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("APP_ADMIN_EMAIL=admin@toylink.test\n"), 0o600))
	t.Setenv("APP_CONFIG_FILE", filepath.Join(dir, "missing.yaml"))
	t.Setenv("APP_ENV_FILE", envFile)
	t.Cleanup(func() { _ = os.Unsetenv("APP_ADMIN_EMAIL") })

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, "admin@toylink.test", cfg.Admin.Email)
}
