package config

import (
	"bytes"
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvironmentConfigDefaults(t *testing.T) {
	for _, key := range []string{"API_URL", "SEED_COUNT", "HTTP_TIMEOUT_SECONDS", "RATE_LIMIT", "FAIL_ON_ERROR", "AWS_REGION"} {
		t.Setenv(key, "")
	}

	env := NewEnvironmentConfig()

	assert.Equal(t, "", env.APIURL)
	assert.Equal(t, 50, env.SeedCount)
	assert.Equal(t, 30, env.HTTPTimeoutSeconds)
	assert.Equal(t, float64(0), env.RateLimit)
	assert.False(t, env.FailOnError)
}

func TestNewEnvironmentConfigFromEnv(t *testing.T) {
	t.Setenv("API_URL", "https://hr.example.com")
	t.Setenv("SEED_COUNT", "7")
	t.Setenv("RATE_LIMIT", "2.5")
	t.Setenv("FAIL_ON_ERROR", "true")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "not-a-number")

	env := NewEnvironmentConfig()

	assert.Equal(t, "https://hr.example.com", env.APIURL)
	assert.Equal(t, 7, env.SeedCount)
	assert.Equal(t, 2.5, env.RateLimit)
	assert.True(t, env.FailOnError)
	assert.Equal(t, 30, env.HTTPTimeoutSeconds)
}

func TestParseFlags(t *testing.T) {
	env := &envConfig{APIURL: "http://localhost:8000", Username: "env-user", SeedCount: 50}

	tests := []struct {
		name    string
		args    []string
		want    *flags
		wantErr string
	}{
		{
			name: "env defaults",
			args: nil,
			want: &flags{URL: "http://localhost:8000", Username: "env-user", Count: 50},
		},
		{
			name: "flags override env",
			args: []string{"--url", "https://hr.example.com", "--username", "admin", "--password", "pw", "--test", "--seed", "--count", "5", "--fail-on-error"},
			want: &flags{URL: "https://hr.example.com", Username: "admin", Password: "pw", Test: true, Seed: true, Count: 5, FailOnError: true},
		},
		{
			name:    "negative count",
			args:    []string{"--seed", "--count", "-1"},
			wantErr: "--count must not be negative",
		},
		{
			name: "negative count is ignored without seeding",
			args: []string{"--test", "--count", "-1"},
			want: &flags{URL: "http://localhost:8000", Username: "env-user", Test: true, Count: -1},
		},
		{
			name:    "stray arguments",
			args:    []string{"--test", "extra"},
			wantErr: "unexpected arguments: extra",
		},
		{
			name:    "unknown flag",
			args:    []string{"--verbose"},
			wantErr: "flag provided but not defined: -verbose",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseFlags(tc.args, env, &bytes.Buffer{})
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseFlagsNegativeSeedCountFromEnv(t *testing.T) {
	env := &envConfig{APIURL: "http://localhost:8000", SeedCount: -1}

	got, err := parseFlags([]string{"--test"}, env, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, got.Test)

	_, err = parseFlags([]string{"--seed"}, env, &bytes.Buffer{})
	assert.EqualError(t, err, "--count must not be negative")
}

func TestParseFlagsHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := parseFlags([]string{"-h"}, &envConfig{}, &out)

	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, out.String(), "-seed")
}

func TestNewApplicationConfig(t *testing.T) {
	t.Setenv("EMAIL_TO", "")
	t.Setenv("EMAIL_FROM", "")

	cfg, err := NewApplicationConfig([]string{"--url", "http://hr.local/", "--token", "abc", "--seed", "--count", "3"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "http://hr.local/", cfg.URL())
	assert.Equal(t, "http://hr.local", cfg.HRClient().BaseURL())
	assert.Equal(t, "abc", cfg.Token())
	assert.True(t, cfg.RunSeed())
	assert.False(t, cfg.RunTests())
	assert.Equal(t, 3, cfg.SeedCount())
	assert.NotNil(t, cfg.AuthService())
	assert.Nil(t, cfg.Mailer())
}

func TestNewApplicationConfigWithMailer(t *testing.T) {
	t.Setenv("EMAIL_TO", "ops@example.com")
	t.Setenv("EMAIL_FROM", "noreply@example.com")

	cfg, err := NewApplicationConfig(nil, &bytes.Buffer{})

	require.NoError(t, err)
	assert.NotNil(t, cfg.Mailer())
}
