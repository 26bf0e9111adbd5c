package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
twitter:
  bearer_token: AAAAtest
  credentials:
    username: alice
    password: secret
    email: alice@example.com
    two_factor_secret: JBSWY3DPEHPK3PXP
storage:
  posted_database: file:test.db
logging:
  level: debug
`

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig([]byte(testConfig))
	require.NoError(t, err)
	assert.Equal(t, "AAAAtest", cfg.Twitter.BearerToken)
	assert.Equal(t, "alice", cfg.Twitter.Credentials.Username)
	assert.Equal(t, DataSource("file:test.db"), cfg.Storage.PostedDatabase)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Defaults fill everything not set.
	assert.Equal(t, "https://api.twitter.com", cfg.Twitter.APIBase)
	assert.Equal(t, "https://upload.twitter.com", cfg.Twitter.UploadBase)
	assert.Equal(t, "https://twitter.com", cfg.Twitter.GraphQLBase)
	assert.Equal(t, "Mozilla/5.0", cfg.Twitter.UserAgent)
	assert.Equal(t, 3*time.Hour, cfg.Twitter.GuestTokenMaxAge)
}

func TestLoadConfigRequiresBearerToken(t *testing.T) {
	_, err := loadConfig([]byte("twitter:\n  user_agent: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bearer_token")
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	_, err := loadConfig([]byte("twitter: ["))
	require.Error(t, err)
}
