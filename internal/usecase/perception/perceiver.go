package perception

import (
	"context"
	"fmt"
	"time"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
)

const DefaultConfidenceThreshold = 0.3

type Config struct {
	ConfidenceThreshold float64
	Now                 func() time.Time
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Now:                 time.Now,
	}
}

// Perceiver captures the surface and runs detection on it. It never fails:
// when capture or detection errors the fixed fallback set is returned. An
// empty detection result is a valid, empty snapshot.
type Perceiver struct {
	surface  output.SurfacePort
	detector output.DetectorPort
	logger   output.LoggerPort
	cfg      Config
}

func New(surface output.SurfacePort, detector output.DetectorPort, logger output.LoggerPort, cfg Config) *Perceiver {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Perceiver{
		surface:  surface,
		detector: detector,
		logger:   logger,
		cfg:      cfg,
	}
}

func (p *Perceiver) Snapshot(ctx context.Context) entity.Snapshot {
	capture, elements, err := p.detect(ctx)
	if err != nil {
		p.logger.Warn("Perception degraded to fallback elements", "error", err)
		return entity.Snapshot{
			Capture:  capture,
			Elements: FallbackElements(),
			Degraded: true,
			TakenAt:  p.cfg.Now(),
		}
	}

	p.logger.Debug("Snapshot taken", "elements", len(elements), "capture", capture.ID)
	return entity.Snapshot{
		Capture:  capture,
		Elements: elements,
		TakenAt:  p.cfg.Now(),
	}
}

func (p *Perceiver) detect(ctx context.Context) (*entity.Capture, []entity.Element, error) {
	capture, err := p.surface.Capture(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: capture: %v", entity.ErrPerceptionUnavailable, err)
	}

	raw, err := p.detector.Detect(ctx, capture)
	if err != nil {
		return capture, nil, fmt.Errorf("%w: detect: %v", entity.ErrPerceptionUnavailable, err)
	}

	elements := make([]entity.Element, 0, len(raw))
	for _, el := range raw {
		if el.Confidence < p.cfg.ConfidenceThreshold {
			continue
		}
		elements = append(elements, el)
	}
	return capture, elements, nil
}
