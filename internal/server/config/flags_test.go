package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:8080", "-g", ":6000", "-d", "db", "-k", "secret", "-m", "session",
				"-t", "2h", "-o", "https://x.example,https://y.example", "-l", "debug",
				"-b", "bucket", "-e", "http://endpoint", "-c", "ignored.json",
			},
			expected: &Config{
				EndpointAddrHTTP: "127.0.0.1:8080",
				EndpointAddrGRPC: ":6000",
				DatabaseDSN:      "db",
				SecretKey:        "secret",
				AuthStrategy:     "session",
				CredentialTTL:    2 * time.Hour,
				AllowedOrigins:   []string{"https://x.example", "https://y.example"},
				LogLevel:         "debug",
				S3Bucket:         "bucket",
				S3BaseEndpoint:   "http://endpoint",
			},
		},
		{
			name:        "bad duration",
			args:        []string{"cmd", "-t", "forever"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
