package output

import (
	"context"

	"vision-agent/internal/domain/entity"
)

type DetectorPort interface {
	Detect(ctx context.Context, capture *entity.Capture) ([]entity.Element, error)
}
