package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "memory", input: "sqlite://:memory:", want: ":memory:"},
		{name: "absolute path", input: "sqlite:///var/lib/bgswatch/events.db", want: "/var/lib/bgswatch/events.db"},
		{name: "relative path", input: "sqlite://data/events.db", want: "./data/events.db"},
		{name: "explicit relative", input: "sqlite://./events.db", want: "./events.db"},
		{name: "query string", input: "sqlite://events.db?_pragma=busy_timeout(5000)", want: "./events.db?_pragma=busy_timeout(5000)"},
		{name: "escaped path", input: "sqlite://my%20events.db", want: "./my events.db"},
		{name: "parent directory", input: "sqlite://../shared/events.db", want: "../shared/events.db"},
		{name: "wrong scheme", input: "postgres://localhost/db", wantErr: true},
		{name: "missing path", input: "sqlite://?mode=ro", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseDSN(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDSN(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseDSN(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
