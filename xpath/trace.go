package xpath

import (
	"io"
	"log/slog"
	"os"
)

// Tracer receives compiler rule boundaries, mostly useful to debug a
// grammar extension.
type Tracer interface {
	Enter(string)
	Leave(string)
	Error(string, error)
}

type discardTracer struct{}

func (_ discardTracer) Enter(_ string)          {}
func (_ discardTracer) Leave(_ string)          {}
func (_ discardTracer) Error(_ string, _ error) {}

type stdioTracer struct {
	logger *slog.Logger
	depth  int
}

func TraceStdout() Tracer {
	tracer := stdioTracer{
		logger: stdioLogger(os.Stdout),
	}
	return &tracer
}

func TraceStderr() Tracer {
	tracer := stdioTracer{
		logger: stdioLogger(os.Stderr),
	}
	return &tracer
}

func stdioLogger(w io.Writer) *slog.Logger {
	opts := slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	return slog.New(slog.NewTextHandler(w, &opts))
}

func (t *stdioTracer) Enter(rule string) {
	t.depth++
	t.logger.Debug("enter rule", "rule", rule, "depth", t.depth)
}

func (t *stdioTracer) Leave(rule string) {
	t.logger.Debug("leave rule", "rule", rule, "depth", t.depth)
	t.depth--
}

func (t *stdioTracer) Error(rule string, err error) {
	t.logger.Debug("rule failed", "rule", rule, "depth", t.depth, "error", err)
}
