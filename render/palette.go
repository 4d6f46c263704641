package render

import (
	"image/color"
	"strings"
)

// Category is the closed set of entity types that have their own colour.
// Everything else renders as CategoryDefault.
type Category int

const (
	CategoryDefault Category = iota
	CategoryPerson
	CategoryOrganization
	CategoryLocation
	CategoryConcept
	CategoryEvent
)

var categoryNames = map[string]Category{
	"person":       CategoryPerson,
	"organization": CategoryOrganization,
	"location":     CategoryLocation,
	"concept":      CategoryConcept,
	"event":        CategoryEvent,
}

// ParseCategory maps an entity type tag to its category, ignoring case.
func ParseCategory(entityType string) Category {
	if c, ok := categoryNames[strings.ToLower(strings.TrimSpace(entityType))]; ok {
		return c
	}
	return CategoryDefault
}

func (c Category) String() string {
	for name, category := range categoryNames {
		if category == c {
			return name
		}
	}
	return "default"
}

var palette = [...]color.RGBA{
	CategoryDefault:      hex(0x3b82f6),
	CategoryPerson:       hex(0xef4444),
	CategoryOrganization: hex(0x3b82f6),
	CategoryLocation:     hex(0x10b981),
	CategoryConcept:      hex(0xf59e0b),
	CategoryEvent:        hex(0x8b5cf6),
}

// Color is the fill colour of nodes in this category.
func (c Category) Color() color.RGBA {
	if c < 0 || int(c) >= len(palette) {
		return palette[CategoryDefault]
	}
	return palette[c]
}

func hex(rgb uint32) color.RGBA {
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xff}
}
