package github

import (
	"testing"
	"time"
)

func TestConfigWithDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}.WithDefaults()

	if cfg.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.InitialBackoff != 2*time.Second {
		t.Fatalf("InitialBackoff = %s, want 2s", cfg.InitialBackoff)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Fatalf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
	}
}

func TestNewClientReturnsClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("NewClient error = %v, want nil", err)
	}
	if client == nil {
		t.Fatal("NewClient returned nil client")
	}
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		cfg  Config
	}{
		{name: "negative retries", cfg: Config{MaxRetries: -1}},
		{name: "negative backoff", cfg: Config{InitialBackoff: -time.Second}},
		{name: "page size above API max", cfg: Config{PageSize: 101}},
		{name: "unparsable base url", cfg: Config{RESTBaseURL: "://bad"}},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewClient(tc.cfg); err == nil {
				t.Fatalf("NewClient(%+v) error = nil, want error", tc.cfg)
			}
		})
	}
}
