package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config source at a clean slate.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CI", "false")
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("CONFIG_FILE", "")
	for _, key := range []string{"DB_HOST", "DB_PASSWORD", "JWT_SECRET", "REDIS_URL", "REDIS_HOST", "CORS_ORIGINS", "TOKEN_TTL", "DB_DRIVER"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("PAGE_SIZE", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 10, cfg.PageSize)
	assert.True(t, cfg.RedisEnabled())
}

func TestLoadConfigSecretsAndFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("secret-file"), 0o600))

	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("db_name: recipes\njwt_secret: from-file\n"), 0o600))
	t.Setenv("CONFIG_FILE", file)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "recipes", cfg.DBName)
	assert.Equal(t, "from-secret", cfg.DBPassword)
	// secrets take precedence over the file
	assert.Equal(t, "secret-file", cfg.JWTSecret)
}

func TestLoadConfigCISkipsSecrets(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("ignored"), 0o600))
	t.Setenv("CI", "true")
	t.Setenv("DB_PASSWORD", "ci-pass")
	t.Setenv("JWT_SECRET", "ci-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ci-pass", cfg.DBPassword)
}

func TestValidateConfigProduction(t *testing.T) {
	cfg := Defaults()
	err := ValidateConfig(&cfg, Production)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["db_password"])
	assert.True(t, fields["jwt_secret"])

	cfg.DBPassword = "pw"
	cfg.JWTSecret = "a-real-secret"
	assert.NoError(t, ValidateConfig(&cfg, Production))
}

func TestValidateConfigRejectsUnknownBackends(t *testing.T) {
	cfg := Defaults()
	cfg.DBDriver = "mysql"
	cfg.StorageBackend = "ftp"
	err := ValidateConfig(&cfg, Development)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_driver")
	assert.Contains(t, err.Error(), "storage_backend")
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("prod"))
	assert.Equal(t, Production, ParseEnvironment("Production"))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment(""))
}

func TestS3PublicURL(t *testing.T) {
	s := &S3Config{BucketName: "images", Region: "eu-west-1"}
	assert.Equal(t, "https://images.s3.eu-west-1.amazonaws.com/recipes/a.png", s.PublicURL("recipes/a.png"))

	s.Endpoint = "http://minio:9000"
	assert.Equal(t, "http://minio:9000/images/recipes/a.png", s.PublicURL("recipes/a.png"))
}
