package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunArgs(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("MAILGUN_API_KEY", "")
	t.Setenv("LOG_LEVEL", "error")

	tests := []struct {
		name      string
		args      []string
		wantUsage bool
	}{
		{name: "no job", args: nil, wantUsage: true},
		{name: "unknown job", args: []string{"fetch-everything"}},
		{name: "missing api key", args: []string{"fetch-totals"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := new(bytes.Buffer)
			if code := run(tt.args, out); code != 1 {
				t.Errorf("expected exit code 1, got %d", code)
			}
			if got := strings.Contains(out.String(), "Usage:"); got != tt.wantUsage {
				t.Errorf("expected usage printed=%v, got output %q", tt.wantUsage, out.String())
			}
		})
	}
}
