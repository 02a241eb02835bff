package perception

import "vision-agent/internal/domain/entity"

const fallbackConfidence = 0.5

// FallbackElements is the fixed element set used when detection is
// unavailable: a submit button, settings and menu icons and an email field.
func FallbackElements() []entity.Element {
	return []entity.Element{
		fallback("fallback_0", entity.ElementButton, "Submit", entity.BBox{X1: 100, Y1: 100, X2: 300, Y2: 150}),
		fallback("fallback_1", entity.ElementIcon, "Settings", entity.BBox{X1: 400, Y1: 100, X2: 450, Y2: 150}),
		fallback("fallback_2", entity.ElementIcon, "Menu", entity.BBox{X1: 500, Y1: 100, X2: 550, Y2: 150}),
		fallback("fallback_3", entity.ElementText, "Enter your email", entity.BBox{X1: 100, Y1: 200, X2: 400, Y2: 240}),
	}
}

func fallback(id string, typ entity.ElementType, label string, box entity.BBox) entity.Element {
	return entity.Element{
		ID:           id,
		Type:         typ,
		Box:          box,
		Confidence:   fallbackConfidence,
		Label:        label,
		Interactable: typ == entity.ElementButton || typ == entity.ElementIcon,
	}
}
