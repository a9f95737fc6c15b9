package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    *Config
		wantErr bool
	}{
		{
			name: "known flags",
			args: []string{"-a", "http://x/api", "-s", "memory", "-debounce", "1s", "-rate", "2.5", "-burst", "3"},
			want: &Config{APIBaseURL: "http://x/api", Backend: "memory", SearchDebounce: time.Second, RateLimit: 2.5, RateBurst: 3},
		},
		{
			name: "unknown flags are ignored",
			args: []string{"-c", "cfg.json", "-listen", ":9000", "-verbose"},
			want: &Config{DevServerAddr: ":9000"},
		},
		{
			name:    "bad duration",
			args:    []string{"-debounce", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.want, cfg))
		})
	}
}
