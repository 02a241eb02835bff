package history

import (
	"sync"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
)

// Log is the append-only record of action outcomes. It is never
// truncated; attach a sink to mirror outcomes out of process.
type Log struct {
	mu       sync.RWMutex
	outcomes []entity.ActionOutcome
	sink     output.HistorySink
	logger   output.LoggerPort
}

func New(sink output.HistorySink, logger output.LoggerPort) *Log {
	return &Log{sink: sink, logger: logger}
}

func (l *Log) Append(o entity.ActionOutcome) {
	l.mu.Lock()
	l.outcomes = append(l.outcomes, o)
	l.mu.Unlock()

	if l.sink == nil {
		return
	}
	if err := l.sink.Write(o); err != nil && l.logger != nil {
		l.logger.Warn("History sink write failed", "error", err)
	}
}

// All returns a copy of every outcome in append order.
func (l *Log) All() []entity.ActionOutcome {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]entity.ActionOutcome, len(l.outcomes))
	copy(out, l.outcomes)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.outcomes)
}

func (l *Log) Close() error {
	if l.sink == nil {
		return nil
	}
	return l.sink.Close()
}
