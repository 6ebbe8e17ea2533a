package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MemoryDatabaseWithDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  type: memory
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DatabaseTypeMemory, cfg.Database.Type)
	assert.Equal(t, 100, cfg.Audit.DefaultLimit)
	assert.Equal(t, 500, cfg.Audit.MaxLimit)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	path := writeConfig(t, `
database:
  type: mysql
  hostname: db.internal
  database: consents
  password: from-file
`)
	t.Setenv("CONSENT_GATE_DATABASE_PASSWORD", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestLoad_SigningKeyFromEnvironment(t *testing.T) {
	path := writeConfig(t, `
database:
  type: memory
security:
  jwt:
    enabled: true
    signing_key: ""
`)

	_, err := Load(path)
	require.Error(t, err)

	t.Setenv("CONSENT_GATE_SECURITY_JWT_SIGNING_KEY", "a-real-secret")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a-real-secret", cfg.Security.JWT.SigningKey)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown database type", "database:\n  type: oracle\n"},
		{"mysql without hostname", "database:\n  type: mysql\n  database: consents\n"},
		{"jwt without key", "database:\n  type: memory\nsecurity:\n  jwt:\n    enabled: true\n"},
		{"jwt with sample key", "database:\n  type: memory\nsecurity:\n  jwt:\n    enabled: true\n    signing_key: change-me\n"},
		{"max below default", "database:\n  type: memory\naudit:\n  default_limit: 50\n  max_limit: 10\n"},
		{"bad log format", "database:\n  type: memory\nlogging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestGetDSN(t *testing.T) {
	mysql := DatabaseConfig{Type: DatabaseTypeMySQL, User: "u", Password: "p", Hostname: "h", Port: 3306, Database: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?parseTime=true&multiStatements=true", mysql.GetDSN())
	assert.Equal(t, "mysql", mysql.DriverName())

	pg := DatabaseConfig{Type: DatabaseTypePostgres, User: "u", Password: "p", Hostname: "h", Port: 5432, Database: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", pg.GetDSN())
	assert.Equal(t, "pgx", pg.DriverName())
}

func TestClampLimit(t *testing.T) {
	a := AuditConfig{DefaultLimit: 100, MaxLimit: 500}

	assert.Equal(t, 100, a.ClampLimit(0))
	assert.Equal(t, 100, a.ClampLimit(-3))
	assert.Equal(t, 1, a.ClampLimit(1))
	assert.Equal(t, 250, a.ClampLimit(250))
	assert.Equal(t, 500, a.ClampLimit(501))
}
