// Package observe is the fire-and-forget side channel recording every
// completed SQL execution. A failure here must never reach the caller.
package observe

import (
	"log/slog"
	"strings"
	"time"
)

const (
	KindQuery     = "query"
	KindStatement = "statement"
)

// Classify buckets a statement by its leading keyword.
func Classify(statement string) string {
	fields := strings.Fields(strings.ToLower(statement))
	if len(fields) == 0 {
		return KindStatement
	}
	switch fields[0] {
	case "select", "with", "values":
		return KindQuery
	default:
		return KindStatement
	}
}

type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Record logs one completed execution: the statement kind, the row or
// affected count, and how long the engine took. Safe on a nil recorder.
func (r *Recorder) Record(kind string, count int64, elapsed time.Duration) {
	defer func() {
		recover()
	}()

	if r == nil || r.logger == nil {
		return
	}
	r.logger.Info("sql executed",
		"kind", kind,
		"count", count,
		"duration_ms", elapsed.Milliseconds(),
	)
}
