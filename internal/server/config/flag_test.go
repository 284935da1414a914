package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-g", ":7000", "-d", "postgres://x", "-k", testKey,
				"-i", "issuer", "-u", "audience", "-t", "5", "-p", "bcrypt", "-l", "debug",
			},
			expected: &Config{
				HTTPAddress:       "127.0.0.1:9090",
				GRPCAddress:       ":7000",
				DatabaseDSN:       "postgres://x",
				PasswordAlgorithm: "bcrypt",
				LogLevel:          "debug",
				Jwt:               JWTConfig{Key: testKey, Issuer: "issuer", Audience: "audience", DurationInMinutes: 5},
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-c", "cfg.json", "-sub", "alice", "-i", "issuer"},
			expected: &Config{Jwt: JWTConfig{Issuer: "issuer"}},
		},
		{
			name:     "empty grpc address disables grpc",
			args:     []string{"-g="},
			expected: &Config{},
		},
		{
			name:      "non-numeric duration",
			args:      []string{"-t", "abc"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, config)
		})
	}
}

func TestParseFlags_OverridesEarlierSources(t *testing.T) {
	config := validConfig()
	require.NoError(t, parseFlags(config, []string{"-t", "1"}))
	assert.Equal(t, 1, config.Jwt.DurationInMinutes)
	assert.Equal(t, testKey, config.Jwt.Key)
}
