package importer

import (
	"fmt"
	"strings"
)

// Variant selects the destination layout
type Variant string

const (
	VariantGrid  Variant = "grid"
	VariantCard  Variant = "card"
	VariantSlide Variant = "slide"
)

// ParseVariant resolves a variant name, accepting the destination aliases
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "grid", "design", "":
		return VariantGrid, nil
	case "card", "cards", "whiteboard":
		return VariantCard, nil
	case "slide", "slides", "presentation":
		return VariantSlide, nil
	default:
		return "", fmt.Errorf("unknown import variant %q", name)
	}
}

// Settings configures the grid layout. Card and slide layouts use fixed constants.
type Settings struct {
	ImageSize           int  `json:"imageSize"`
	Spacing             int  `json:"spacing"`
	ImagesPerRow        int  `json:"imagesPerRow"`
	CreateComponents    bool `json:"createComponents"`
	PreserveAspectRatio bool `json:"preserveAspectRatio"`
}

func DefaultSettings() Settings {
	return Settings{
		ImageSize:           200,
		Spacing:             20,
		ImagesPerRow:        3,
		CreateComponents:    false,
		PreserveAspectRatio: true,
	}
}

// Normalized replaces out-of-range values with the defaults
func (s Settings) Normalized() Settings {
	defaults := DefaultSettings()
	if s.ImageSize <= 0 {
		s.ImageSize = defaults.ImageSize
	}
	if s.Spacing < 0 {
		s.Spacing = defaults.Spacing
	}
	if s.ImagesPerRow <= 0 {
		s.ImagesPerRow = defaults.ImagesPerRow
	}
	return s
}
