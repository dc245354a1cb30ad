package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Info("dropped")
	log.Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["level"] != "WARN" || rec["msg"] != "kept" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"info":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		" Error ": "ERROR",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestKernelOutput_Line(t *testing.T) {
	var buf bytes.Buffer
	k := NewKernelOutput(New("info", &buf))

	k.Line(8888, "[I 10:00:00 NotebookApp] serving\r\n", false)
	k.Line(8888, "traceback\n", true)
	k.Line(8888, "", false)
	k.Line(8888, "\r\n", false)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["level"] != "INFO" || rec["line"] != "[I 10:00:00 NotebookApp] serving" {
		t.Fatalf("stdout record wrong: %v", rec)
	}
	if rec["port"] != float64(8888) {
		t.Fatalf("port attr missing: %v", rec)
	}

	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["level"] != "ERROR" || rec["line"] != "traceback" {
		t.Fatalf("stderr record wrong: %v", rec)
	}
}
