// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/directory")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestParse_DefaultsAndEnv(t *testing.T) {
	requiredEnv(t)
	t.Setenv("SESSIONS_MAX_PER_OWNER", "3")
	t.Setenv("REVIEWS_VOTE_DEDUP_TTL", "24h")

	c, err := Parse("")
	require.NoError(t, err)

	assert.Equal(t, "resource-directory", c.JWT.Issuer)
	assert.Equal(t, CatalogSourceDatabase, c.Catalog.Source)
	assert.Equal(t, 30*time.Minute, c.Sessions.IdleTTL)
	assert.Equal(t, 3, c.Sessions.MaxPerOwner)
	assert.Equal(t, 50, c.Reviews.DefaultLimit)
	assert.True(t, c.Reviews.VoteDedup.Enabled)
	assert.Equal(t, 24*time.Hour, c.Reviews.VoteDedup.TTL)
	assert.Equal(t, uint32(5), c.Reviews.Breaker.ConsecutiveFailures)
	assert.Equal(t, "0.0.0.0:8080", c.Server.Address())
}

func TestParse_File(t *testing.T) {
	requiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  environment: production
catalog:
  source: file
  file_path: /etc/directory/catalog.yaml
reviews:
  default_limit: 25
  max_limit: 75
  breaker:
    timeout: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	c, err := Parse(path)
	require.NoError(t, err)

	assert.True(t, c.IsProduction())
	assert.Equal(t, CatalogSourceFile, c.Catalog.Source)
	assert.Equal(t, "/etc/directory/catalog.yaml", c.Catalog.FilePath)
	assert.Equal(t, 25, c.Reviews.DefaultLimit)
	assert.Equal(t, 75, c.Reviews.MaxLimit)
	assert.Equal(t, 10*time.Second, c.Reviews.Breaker.Timeout)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing database",
			env:     map[string]string{"DATABASE_URL": ""},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "unknown catalog source",
			env:     map[string]string{"CATALOG_SOURCE": "s3"},
			wantErr: `catalog.source "s3"`,
		},
		{
			name:    "file source without path",
			env:     map[string]string{"CATALOG_SOURCE": "file", "CATALOG_FILE_PATH": ""},
			wantErr: "catalog.file_path is required",
		},
		{
			name:    "limits inverted",
			env:     map[string]string{"REVIEWS_DEFAULT_LIMIT": "500"},
			wantErr: "reviews limits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Parse("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
