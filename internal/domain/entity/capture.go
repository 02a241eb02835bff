package entity

import "time"

// Capture is a point-in-time image of the controlled surface.
// Scale is image pixels per surface pixel; detectors working in image
// space divide by it to get actuation coordinates.
type Capture struct {
	ID      string
	URL     string
	Data    []byte
	Format  string
	Width   int
	Height  int
	Scale   float64
	TakenAt time.Time
}

func (c *Capture) ToSurface(b BBox) BBox {
	if c == nil || c.Scale <= 0 || c.Scale == 1 {
		return b
	}
	return b.Scale(1 / c.Scale)
}

type Snapshot struct {
	Capture  *Capture
	Elements []Element
	Degraded bool
	TakenAt  time.Time
}

// Interactable returns the interactable elements in snapshot order.
func (s Snapshot) Interactable() []Element {
	out := make([]Element, 0, len(s.Elements))
	for _, el := range s.Elements {
		if el.Interactable {
			out = append(out, el)
		}
	}
	return out
}

func (s Snapshot) CaptureID() string {
	if s.Capture == nil {
		return ""
	}
	return s.Capture.ID
}

type LayoutType string

const (
	LayoutEmpty        LayoutType = "empty"
	LayoutBalanced     LayoutType = "balanced"
	LayoutHeaderHeavy  LayoutType = "header-heavy"
	LayoutFooterHeavy  LayoutType = "footer-heavy"
	LayoutSidebarLeft  LayoutType = "sidebar-left"
	LayoutSidebarRight LayoutType = "sidebar-right"
)

type Density string

const (
	DensityEmpty    Density = "empty"
	DensitySparse   Density = "sparse"
	DensityModerate Density = "moderate"
	DensityDense    Density = "dense"
)

type Layout struct {
	Type    LayoutType
	Density Density
	Regions map[string][]string
}
