package entity

import "strings"

type ElementType string

const (
	ElementButton ElementType = "button"
	ElementIcon   ElementType = "icon"
	ElementText   ElementType = "text"
	ElementInput  ElementType = "input"
	ElementLink   ElementType = "link"
)

func ElementTypes() []ElementType {
	return []ElementType{ElementButton, ElementIcon, ElementText, ElementInput, ElementLink}
}

// ParseElementType maps a detector type name onto the element enum.
// Names outside the enum (sidebar, unknown, ...) are reported as text.
func ParseElementType(s string) (ElementType, bool) {
	switch ElementType(strings.ToLower(strings.TrimSpace(s))) {
	case ElementButton:
		return ElementButton, true
	case ElementIcon:
		return ElementIcon, true
	case ElementText:
		return ElementText, true
	case ElementInput:
		return ElementInput, true
	case ElementLink:
		return ElementLink, true
	}
	return ElementText, false
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (b BBox) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

func (b BBox) Width() float64 { return b.X2 - b.X1 }
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

func (b BBox) Scale(f float64) BBox {
	return BBox{X1: b.X1 * f, Y1: b.Y1 * f, X2: b.X2 * f, Y2: b.Y2 * f}
}

type Element struct {
	ID           string      `json:"id"`
	Type         ElementType `json:"type"`
	Box          BBox        `json:"bbox"`
	Confidence   float64     `json:"confidence"`
	Label        string      `json:"label"`
	Interactable bool        `json:"interactable"`
}

func (e Element) Center() Point {
	return e.Box.Center()
}
