// Package detector holds DetectorPort decorators shared by the concrete
// detection backends.
package detector

import (
	"context"
	"fmt"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"

	"golang.org/x/time/rate"
)

var _ output.DetectorPort = (*Limited)(nil)

// Limited caps the rate of Detect calls against a remote backend.
type Limited struct {
	inner   output.DetectorPort
	limiter *rate.Limiter
}

// NewLimited allows perSecond calls with the given burst. A non-positive
// rate disables limiting.
func NewLimited(inner output.DetectorPort, perSecond float64, burst int) *Limited {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Limited{inner: inner, limiter: rate.NewLimiter(limit, burst)}
}

func (l *Limited) Detect(ctx context.Context, capture *entity.Capture) ([]entity.Element, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("detector rate limit: %w", err)
	}
	return l.inner.Detect(ctx, capture)
}
