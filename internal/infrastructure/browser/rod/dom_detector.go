package rod

import (
	"context"
	"fmt"

	"vision-agent/internal/application/port/output"
	"vision-agent/internal/domain/entity"

	"github.com/go-rod/rod"
)

var _ output.DetectorPort = (*DOMDetector)(nil)

const (
	domConfidence  = 0.95
	iconMaxArea    = 2500
	maxDOMElements = 200
)

type domQuery struct {
	selector string
	typ      entity.ElementType
}

var domQueries = []domQuery{
	{selector: "button, [role='button'], input[type='submit'], input[type='button']", typ: entity.ElementButton},
	{selector: "input:not([type='hidden']):not([type='submit']):not([type='button']), textarea, select", typ: entity.ElementInput},
	{selector: "a[href]", typ: entity.ElementLink},
	{selector: "[aria-label]:not(button):not(a):not(input), [data-tooltip], img[alt]", typ: entity.ElementIcon},
}

// DOMDetector reads interactive nodes and their boxes straight from the
// page of a BrowserAdapter. Boxes are already in surface coordinates.
type DOMDetector struct {
	adapter *BrowserAdapter
}

func NewDOMDetector(adapter *BrowserAdapter) *DOMDetector {
	return &DOMDetector{adapter: adapter}
}

func (d *DOMDetector) Detect(ctx context.Context, _ *entity.Capture) ([]entity.Element, error) {
	if err := d.adapter.ensureReady(); err != nil {
		return nil, err
	}
	page := d.adapter.page.Context(ctx).Timeout(d.adapter.cfg.Timeout)

	var result []entity.Element
	seen := make(map[string]bool)

	for _, q := range domQueries {
		nodes, err := page.Elements(q.selector)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q.selector, err)
		}
		for _, el := range nodes {
			if len(result) >= maxDOMElements {
				return result, nil
			}
			element, ok := d.describe(el, q.typ, len(result))
			if !ok {
				continue
			}
			key := fmt.Sprintf("%.0f:%.0f:%.0f:%.0f", element.Box.X1, element.Box.Y1, element.Box.X2, element.Box.Y2)
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, element)
		}
	}
	return result, nil
}

func (d *DOMDetector) describe(el *rod.Element, typ entity.ElementType, index int) (entity.Element, bool) {
	visible, err := el.Visible()
	if err != nil || !visible {
		return entity.Element{}, false
	}

	shape, err := el.Shape()
	if err != nil {
		return entity.Element{}, false
	}
	rect := shape.Box()
	if rect == nil || rect.Width <= 0 || rect.Height <= 0 {
		return entity.Element{}, false
	}
	box := entity.BBox{X1: rect.X, Y1: rect.Y, X2: rect.X + rect.Width, Y2: rect.Y + rect.Height}

	outer, err := el.HTML()
	if err != nil {
		return entity.Element{}, false
	}
	info := ParseNodeHTML(outer)

	if typ == entity.ElementButton && box.Width()*box.Height() < iconMaxArea {
		typ = entity.ElementIcon
	}
	if typ == entity.ElementLink && info.Text == "" && info.Label != "" {
		typ = entity.ElementIcon
	}

	return entity.Element{
		ID:           fmt.Sprintf("dom_%d", index),
		Type:         typ,
		Box:          box,
		Confidence:   domConfidence,
		Label:        info.Label,
		Interactable: !info.Disabled,
	}, true
}
