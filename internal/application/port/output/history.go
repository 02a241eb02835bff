package output

import "vision-agent/internal/domain/entity"

type HistorySink interface {
	Write(outcome entity.ActionOutcome) error
	Close() error
}
