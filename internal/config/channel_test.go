package config

import "testing"

func TestDisplayChannel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"latest", "latest"},
		{"stable", "stable"},
		{"1.2.3", "v1.2.3"},
		{"v1.2.3", "v1.2.3"},
		{"1.2", "1.2"},
		{"v2.1", "v2.1"},
		{"1", "1"},
		{"01.2.3", "01.2.3"},
		{"v0.9.0-beta.1", "v0.9.0-beta.1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayChannel(tt.label); got != tt.want {
			t.Errorf("DisplayChannel(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}
