package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantNil bool
	}{
		{in: "debug"},
		{in: "info"},
		{in: "warn"},
		{in: "error"},
		{in: "verbose", wantNil: true},
		{in: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseLevel(tt.in)
			if (got == nil) != tt.wantNil {
				t.Errorf("parseLevel(%q) nil = %v, want %v", tt.in, got == nil, tt.wantNil)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summon.log")

	log := New(Options{Level: "info", File: path})
	log.Info("index built", String("phase", "quick"), Int("count", 3))
	log.Debug("filtered out")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"msg":"index built"`) || !strings.Contains(content, `"phase":"quick"`) {
		t.Errorf("log file missing entry, got %s", content)
	}
	if strings.Contains(content, "filtered out") {
		t.Errorf("debug entry written at info level: %s", content)
	}
}

func TestNopAndWith(t *testing.T) {
	log := Nop().With(String("component", "test"))
	log.Info("nothing happens")
	log.Warnf("still %s", "nothing")
}
