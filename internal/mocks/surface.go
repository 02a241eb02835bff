// Package mocks holds in-memory fakes of the output ports for tests.
package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"
)

var _ output.SurfacePort = (*Surface)(nil)

type Call struct {
	Op string
	X  float64
	Y  float64
}

// Surface records every actuation call. ClickErr, when set, decides the
// error returned by the n-th click (1-based).
type Surface struct {
	mu       sync.Mutex
	Calls    []Call
	URL      string
	Released int
	clicks   int
	captures int

	ClickErr   func(n int) error
	MoveErr    error
	CaptureErr error
	ClickPanic bool
}

func NewSurface() *Surface {
	return &Surface{URL: "about:blank"}
}

func (s *Surface) Click(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks++
	s.Calls = append(s.Calls, Call{Op: "click", X: x, Y: y})
	if s.ClickPanic {
		panic("surface exploded")
	}
	if s.ClickErr != nil {
		return s.ClickErr(s.clicks)
	}
	return nil
}

func (s *Surface) Move(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, Call{Op: "move", X: x, Y: y})
	return s.MoveErr
}

func (s *Surface) Capture(ctx context.Context) (*entity.Capture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CaptureErr != nil {
		return nil, s.CaptureErr
	}
	s.captures++
	return &entity.Capture{
		ID:      fmt.Sprintf("capture-%d", s.captures),
		URL:     s.URL,
		Data:    []byte("fake-jpeg"),
		Format:  "jpeg",
		Width:   800,
		Height:  600,
		Scale:   1,
		TakenAt: time.Unix(int64(s.captures), 0),
	}, nil
}

func (s *Surface) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.URL = url
	s.Calls = append(s.Calls, Call{Op: "navigate"})
	return nil
}

func (s *Surface) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.URL
}

func (s *Surface) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Released++
	return nil
}

func (s *Surface) Clicks() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.Calls {
		if c.Op == "click" {
			out = append(out, c)
		}
	}
	return out
}

func (s *Surface) ReleaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Released
}

var _ output.SurfaceProvider = (*SurfaceProvider)(nil)

type SurfaceProvider struct {
	mu       sync.Mutex
	Err      error
	Acquired []*Surface
}

func (p *SurfaceProvider) Acquire(ctx context.Context) (output.SurfacePort, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	s := NewSurface()
	p.Acquired = append(p.Acquired, s)
	return s, nil
}
