package atlas

import (
	"fmt"

	"github.com/muesli/gamut"
)

// Palette is an ordered list of hex colors handed out to newly shown layers.
type Palette []string

// NewPalette generates size distinct pastel colors. The default layer color
// always comes first so a single active layer looks the same as before.
func NewPalette(size int) (Palette, error) {
	if size <= 0 {
		return Palette{DefaultLayerColor}, nil
	}

	palette := Palette{DefaultLayerColor}
	if size == 1 {
		return palette, nil
	}

	colors, err := gamut.Generate(size-1, gamut.PastelGenerator{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate layer palette: %w", err)
	}
	for _, c := range colors {
		palette = append(palette, gamut.ToHex(c))
	}
	return palette, nil
}

// At returns the color for the i-th assignment, wrapping around.
func (p Palette) At(i int) string {
	if len(p) == 0 {
		return DefaultLayerColor
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}
