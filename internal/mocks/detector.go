package mocks

import (
	"context"
	"sync"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
)

var _ output.DetectorPort = (*Detector)(nil)

// Detector returns Frames in order, repeating the last one once they run
// out. Err is returned instead when set.
type Detector struct {
	mu     sync.Mutex
	Frames [][]entity.Element
	Err    error
	Calls  int
}

func NewDetector(frames ...[]entity.Element) *Detector {
	return &Detector{Frames: frames}
}

func (d *Detector) Detect(ctx context.Context, capture *entity.Capture) ([]entity.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls++
	if d.Err != nil {
		return nil, d.Err
	}
	if len(d.Frames) == 0 {
		return nil, nil
	}
	i := d.Calls - 1
	if i >= len(d.Frames) {
		i = len(d.Frames) - 1
	}
	return append([]entity.Element(nil), d.Frames[i]...), nil
}

var _ output.RandomSource = (*SequenceRandom)(nil)

// SequenceRandom yields Values in a loop, each reduced modulo n.
type SequenceRandom struct {
	Values []int
	next   int
	Seen   []int
}

func (r *SequenceRandom) Intn(n int) int {
	r.Seen = append(r.Seen, n)
	if len(r.Values) == 0 {
		return 0
	}
	v := r.Values[r.next%len(r.Values)]
	r.next++
	return v % n
}

// Button builds a high-confidence interactable button.
func Button(id, label string, x1, y1, x2, y2 float64) entity.Element {
	return entity.Element{
		ID:           id,
		Type:         entity.ElementButton,
		Box:          entity.BBox{X1: x1, Y1: y1, X2: x2, Y2: y2},
		Confidence:   0.95,
		Label:        label,
		Interactable: true,
	}
}

// Link builds a low-confidence interactable link.
func Link(id, label string) entity.Element {
	return entity.Element{
		ID:           id,
		Type:         entity.ElementLink,
		Box:          entity.BBox{X1: 0, Y1: 0, X2: 20, Y2: 10},
		Confidence:   0.5,
		Label:        label,
		Interactable: true,
	}
}
