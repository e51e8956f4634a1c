package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("PORT", "")
	t.Setenv("HISTORY_DRIVER", "")

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, DriverMemory, cfg.History.Driver)
	assert.Equal(t, "gsk_test", cfg.Credentials.Groq)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	yml := `
server:
  port: 9000
  corsOrigins: ["https://app.example.com"]
history:
  driver: sqlite
  dsn: /tmp/h.db
minio:
  endpoint: minio:9000
  bucketName: samples
sms:
  defaultRegion: US
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("GROQ_API_KEY", "k")
	t.Setenv("PORT", "8081")
	t.Setenv("HISTORY_DRIVER", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, DriverSQLite, cfg.History.Driver)
	assert.Equal(t, "/tmp/h.db", cfg.SQLitePath())
	assert.Equal(t, "US", cfg.SMS.DefaultRegion)
	assert.True(t, cfg.MinioEnabled())
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VT_API_KEY=vt-from-dotenv\n"), 0o600))
	t.Setenv("GROQ_API_KEY", "k")
	os.Unsetenv("VT_API_KEY")
	t.Cleanup(func() { os.Unsetenv("VT_API_KEY") })

	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "vt-from-dotenv", cfg.Credentials.VirusTotal)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"GROQ_API_KEY":   " gsk ",
		"ABUSEIPDB_KEY":  "abuse",
		"HISTORY_DRIVER": "Postgres",
		"HISTORY_DSN":    "postgres://u:p@db/h",
		"REDIS_URL":      "redis://cache:6379/0",
	}))
	require.NoError(t, err)

	assert.Equal(t, "gsk", cfg.Credentials.Groq)
	assert.Equal(t, "abuse", cfg.Credentials.AbuseIPDB)
	assert.Equal(t, DriverPostgres, cfg.History.Driver)
	assert.Equal(t, "postgres://u:p@db/h", cfg.PostgresDSN())
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
}

func TestApplyEnv_BadPort(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{"PORT": "eighty"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	cfg.Credentials.Groq = "k"
	cfg.History.Driver = "cassandra"
	assert.Error(t, cfg.Validate())

	cfg.History.Driver = DriverFile
	assert.NoError(t, cfg.Validate())
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.User = "root"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "db"
	cfg.Database.Port = 3306
	cfg.Database.Name = "cyber"

	assert.Equal(t, "root:pw@tcp(db:3306)/cyber?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())

	cfg.History.DSN = "custom"
	assert.Equal(t, "custom", cfg.MySQLDSN())
}
