package composite

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// PixelEdit overrides a single pixel with a fixed color
type PixelEdit struct {
	X     int
	Y     int
	Color color.RGBA
}

// ParseEdits parses a manual pixel edit list of the form
// "x,y=#RRGGBB;x,y=#RRGGBB". Whitespace around entries is ignored
// and an empty string yields no edits.
func ParseEdits(spec string) ([]PixelEdit, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var edits []PixelEdit
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		coordsAndColor := strings.SplitN(entry, "=", 2)
		if len(coordsAndColor) != 2 {
			return nil, fmt.Errorf("invalid edit '%s': expected x,y=#RRGGBB", entry)
		}

		coords := strings.Split(coordsAndColor[0], ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("invalid coordinates '%s' in edit '%s': expected x,y", coordsAndColor[0], entry)
		}

		x, err := strconv.Atoi(strings.TrimSpace(coords[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid x coordinate '%s' in edit '%s': %v", coords[0], entry, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(coords[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid y coordinate '%s' in edit '%s': %v", coords[1], entry, err)
		}

		c, err := parseHexColor(strings.TrimSpace(coordsAndColor[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid color in edit '%s': %v", entry, err)
		}

		edits = append(edits, PixelEdit{X: x, Y: y, Color: c})
	}

	return edits, nil
}

func parseHexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("expected #RRGGBB, got '%s'", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("expected #RRGGBB, got '%s'", s)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// ApplyEdits returns a copy of img with the edits applied. Edits outside
// the image bounds are rejected rather than silently dropped.
func ApplyEdits(img *image.RGBA, edits []PixelEdit) (*image.RGBA, error) {
	result := cloneRGBA(img)
	bounds := result.Bounds()

	for _, edit := range edits {
		if edit.X < 0 || edit.X >= bounds.Dx() || edit.Y < 0 || edit.Y >= bounds.Dy() {
			return nil, fmt.Errorf("edit at (%d,%d) is outside image bounds %dx%d",
				edit.X, edit.Y, bounds.Dx(), bounds.Dy())
		}
		result.SetRGBA(edit.X, edit.Y, edit.Color)
	}

	return result, nil
}
