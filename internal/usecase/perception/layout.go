package perception

import (
	"fmt"
	"strings"

	"vision-agent/internal/domain/entity"
)

const (
	regionTop    = "top"
	regionMiddle = "middle"
	regionBottom = "bottom"
	regionLeft   = "left"
	regionCenter = "center"
	regionRight  = "right"
)

// AnalyzeLayout buckets elements into thirds of the occupied area and
// classifies the overall arrangement.
func AnalyzeLayout(elements []entity.Element) entity.Layout {
	if len(elements) == 0 {
		return entity.Layout{Type: entity.LayoutEmpty, Density: entity.DensityEmpty, Regions: map[string][]string{}}
	}

	var maxX, maxY float64
	for _, el := range elements {
		if el.Box.X2 > maxX {
			maxX = el.Box.X2
		}
		if el.Box.Y2 > maxY {
			maxY = el.Box.Y2
		}
	}

	regions := map[string][]string{
		regionTop: {}, regionMiddle: {}, regionBottom: {},
		regionLeft: {}, regionCenter: {}, regionRight: {},
	}
	for _, el := range elements {
		c := el.Center()
		switch {
		case c.Y < maxY/3:
			regions[regionTop] = append(regions[regionTop], el.ID)
		case c.Y < 2*maxY/3:
			regions[regionMiddle] = append(regions[regionMiddle], el.ID)
		default:
			regions[regionBottom] = append(regions[regionBottom], el.ID)
		}
		switch {
		case c.X < maxX/3:
			regions[regionLeft] = append(regions[regionLeft], el.ID)
		case c.X < 2*maxX/3:
			regions[regionCenter] = append(regions[regionCenter], el.ID)
		default:
			regions[regionRight] = append(regions[regionRight], el.ID)
		}
	}

	n := func(r string) int { return len(regions[r]) }
	layoutType := entity.LayoutBalanced
	switch {
	case n(regionTop) > n(regionMiddle)+n(regionBottom):
		layoutType = entity.LayoutHeaderHeavy
	case n(regionBottom) > n(regionTop)+n(regionMiddle):
		layoutType = entity.LayoutFooterHeavy
	case n(regionLeft) > n(regionCenter)+n(regionRight):
		layoutType = entity.LayoutSidebarLeft
	case n(regionRight) > n(regionCenter)+n(regionLeft):
		layoutType = entity.LayoutSidebarRight
	}

	return entity.Layout{Type: layoutType, Density: DensityOf(len(elements)), Regions: regions}
}

func DensityOf(count int) entity.Density {
	switch {
	case count == 0:
		return entity.DensityEmpty
	case count < 10:
		return entity.DensitySparse
	case count < 30:
		return entity.DensityModerate
	default:
		return entity.DensityDense
	}
}

// Summarize renders a one-line description of a snapshot.
func Summarize(s entity.Snapshot) string {
	counts := map[entity.ElementType]int{}
	for _, el := range s.Elements {
		counts[el.Type]++
	}
	layout := AnalyzeLayout(s.Elements)

	parts := make([]string, 0, 5)
	for _, typ := range []entity.ElementType{entity.ElementButton, entity.ElementIcon, entity.ElementInput, entity.ElementLink, entity.ElementText} {
		if counts[typ] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[typ], typ))
		}
	}

	summary := fmt.Sprintf("%d elements (%d interactable), %s %s layout",
		len(s.Elements), len(s.Interactable()), layout.Density, layout.Type)
	if len(parts) > 0 {
		summary += ": " + strings.Join(parts, ", ")
	}
	if s.Degraded {
		summary += " [fallback]"
	}
	return summary
}
