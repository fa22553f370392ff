package config

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogConfigLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       LogConfig
		wantDebug bool
		wantJSON  bool
	}{
		{name: "text info", cfg: LogConfig{Level: "info", Format: "text"}},
		{name: "json debug", cfg: LogConfig{Level: "DEBUG", Format: "json"}, wantDebug: true, wantJSON: true},
		{name: "warn hides info", cfg: LogConfig{Level: "warn", Format: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := tt.cfg.Logger(&buf)

			logger.Debug("debug line")
			if got := strings.Contains(buf.String(), "debug line"); got != tt.wantDebug {
				t.Fatalf("debug logged = %v, want %v", got, tt.wantDebug)
			}

			buf.Reset()
			logger.Error("error line", "tick", "T1")
			out := buf.String()
			if !strings.Contains(out, "error line") {
				t.Fatalf("error not logged: %q", out)
			}
			if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
				t.Fatalf("json output = %v, want %v: %q", got, tt.wantJSON, out)
			}
		})
	}
}
