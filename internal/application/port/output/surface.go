package output

import (
	"context"

	"vision-agent/internal/domain/entity"
)

// SurfacePort is the actuation surface owned by a single agent.
type SurfacePort interface {
	Click(ctx context.Context, x, y float64) error
	Move(ctx context.Context, x, y float64) error
	Capture(ctx context.Context) (*entity.Capture, error)
	Navigate(ctx context.Context, url string) error

	CurrentURL() string
	Release() error
}

type SurfaceProvider interface {
	Acquire(ctx context.Context) (SurfacePort, error)
}
