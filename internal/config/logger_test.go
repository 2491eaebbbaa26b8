package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerConfigure(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "INFO"},
		{level: "warn"},
		{level: "Error"},
		{level: "verbose", wantErr: true},
		{level: ""},
	}

	for _, tc := range tcs {
		t.Run(tc.level, func(t *testing.T) {
			t.Parallel()
			logger := &Logger{Level: tc.level}
			got, err := logger.Configure(&bytes.Buffer{})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Configure(%q) error = nil, want error", tc.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("Configure(%q) error = %v, want nil", tc.level, err)
			}
			if got == nil {
				t.Fatalf("Configure(%q) returned nil logger", tc.level)
			}
		})
	}
}

func TestLoggerConfigureJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := (&Logger{Level: "info", JSON: true}).Configure(&buf)
	if err != nil {
		t.Fatalf("Configure error = %v, want nil", err)
	}
	logger.Info("collected", "families", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "collected" {
		t.Fatalf("msg = %v, want collected", record["msg"])
	}
}

func TestLoggerRedactsToken(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := (&Logger{Level: "debug"}).Configure(&buf)
	if err != nil {
		t.Fatalf("Configure error = %v, want nil", err)
	}
	logger.Debug("loaded config", "config", Config{Token: "ghp_secretvalue", OutputPath: "out"})

	if strings.Contains(buf.String(), "ghp_secretvalue") {
		t.Fatalf("log output leaked token: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "out") {
		t.Fatalf("log output = %q, want non secret fields", buf.String())
	}
}

func TestLoggerFlags(t *testing.T) {
	t.Parallel()

	logger := &Logger{}
	flags := logger.Flags()
	if len(flags) != 2 {
		t.Fatalf("Flags() returned %d flags, want 2", len(flags))
	}

	names := make(map[string]bool)
	for _, flag := range flags {
		if named, ok := flag.(interface{ Names() []string }); ok && len(named.Names()) > 0 {
			names[named.Names()[0]] = true
		}
	}
	if !names["log-level"] || !names["log-json"] {
		t.Fatalf("flag names = %v, want log-level and log-json", names)
	}
}
