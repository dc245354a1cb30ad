package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New builds the process-wide JSON logger. A nil writer targets stderr;
// unknown level names fall back to info.
func New(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(h)
}

func parseLevel(name string) slog.Level {
	if lv, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lv
	}
	return slog.LevelInfo
}

// KernelOutput adapts the kernel process's captured stdout/stderr lines to
// structured log records tagged with the kernel port.
type KernelOutput struct {
	log *slog.Logger
}

func NewKernelOutput(log *slog.Logger) *KernelOutput {
	return &KernelOutput{log: log.With("stream", "kernel")}
}

// Line records one output line. isErr marks lines read from stderr.
func (k *KernelOutput) Line(port int, line string, isErr bool) {
	if k == nil || k.log == nil {
		return
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	if isErr {
		k.log.Error("kernel output", "port", port, "line", line)
		return
	}
	k.log.Info("kernel output", "port", port, "line", line)
}
