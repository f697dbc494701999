package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "warning": slog.LevelWarn,
		"ERROR": slog.LevelError, "": slog.LevelInfo, "verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): want %v, got %v", in, want, got)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "INFO", Format: "json"}, &buf)
	l.Debug("hidden")
	l.Info("query", "collection", "genome")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %q", buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("json: %v", err)
	}
	if m["msg"] != "query" || m["collection"] != "genome" {
		t.Fatalf("record: %v", m)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: "debug"}, &buf).Debug("page", "core", "taxonomy")
	if !strings.Contains(buf.String(), "msg=page") || !strings.Contains(buf.String(), "core=taxonomy") {
		t.Fatalf("text: %q", buf.String())
	}
}
