package composite

import (
	"image"
	"image/color"
	"testing"
)

// solidImage creates a width x height image filled with a single color
func solidImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	red   = color.RGBA{R: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

func TestResizeSolidColor(t *testing.T) {
	src := solidImage(4, 4, red)

	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"upscale", 8, 8},
		{"downscale", 2, 2},
		{"non-square", 6, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := Resize(src, tt.width, tt.height)

			if dst.Bounds().Dx() != tt.width || dst.Bounds().Dy() != tt.height {
				t.Fatalf("Expected %dx%d image, got %dx%d",
					tt.width, tt.height, dst.Bounds().Dx(), dst.Bounds().Dy())
			}

			// Interpolating a constant image changes nothing
			for y := 0; y < tt.height; y++ {
				for x := 0; x < tt.width; x++ {
					if got := dst.RGBAAt(x, y); got != red {
						t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, red, got)
					}
				}
			}
		})
	}
}

func TestResizeInterpolates(t *testing.T) {
	// A 2x1 black|white image upscaled to 4x1 should ramp smoothly
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, black)
	src.SetRGBA(1, 0, white)

	dst := Resize(src, 4, 1)

	if got := dst.RGBAAt(0, 0); got != black {
		t.Errorf("Expected left edge black, got %v", got)
	}
	if got := dst.RGBAAt(3, 0); got != white {
		t.Errorf("Expected right edge white, got %v", got)
	}

	// Interior pixels are strictly between the endpoints and increasing
	prev := dst.RGBAAt(0, 0).R
	for x := 1; x < 4; x++ {
		cur := dst.RGBAAt(x, 0).R
		if cur < prev {
			t.Errorf("Expected non-decreasing ramp, got %d then %d at x=%d", prev, cur, x)
		}
		prev = cur
	}
	if mid := dst.RGBAAt(1, 0).R; mid == 0 || mid == 255 {
		t.Errorf("Expected interpolated interior pixel, got %d", mid)
	}
}

func TestBlendEndpoints(t *testing.T) {
	base := solidImage(3, 3, black)
	overlay := solidImage(3, 3, white)

	atZero, err := Blend(base, overlay, 0.0)
	if err != nil {
		t.Fatalf("Blend failed: %v", err)
	}
	if got := atZero.RGBAAt(1, 1); got != black {
		t.Errorf("Expected alpha 0 to keep base color, got %v", got)
	}

	atOne, err := Blend(base, overlay, 1.0)
	if err != nil {
		t.Fatalf("Blend failed: %v", err)
	}
	if got := atOne.RGBAAt(1, 1); got != white {
		t.Errorf("Expected alpha 1 to take overlay color, got %v", got)
	}
}

func TestBlendHalf(t *testing.T) {
	base := solidImage(2, 2, black)
	overlay := solidImage(2, 2, white)

	result, err := Blend(base, overlay, 0.5)
	if err != nil {
		t.Fatalf("Blend failed: %v", err)
	}

	got := result.RGBAAt(0, 0)
	expected := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	if got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestBlendSizeMismatch(t *testing.T) {
	base := solidImage(4, 4, black)
	overlay := solidImage(2, 2, white)

	_, err := Blend(base, overlay, 0.5)
	if err == nil {
		t.Error("Expected error for mismatched image sizes, got nil")
	}
}

func TestBlendClampsAlpha(t *testing.T) {
	base := solidImage(2, 2, black)
	overlay := solidImage(2, 2, white)

	result, err := Blend(base, overlay, 1.5)
	if err != nil {
		t.Fatalf("Blend failed: %v", err)
	}
	if got := result.RGBAAt(0, 0); got != white {
		t.Errorf("Expected alpha clamped to 1, got %v", got)
	}
}

func TestOverlay(t *testing.T) {
	base := solidImage(4, 4, black)
	patch := solidImage(2, 2, white)

	result := Overlay(base, patch, 1, 1)

	// Patch covers (1,1)-(2,2)
	for _, pos := range [][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		if got := result.RGBAAt(pos[0], pos[1]); got != white {
			t.Errorf("Pixel (%d,%d): expected white, got %v", pos[0], pos[1], got)
		}
	}
	for _, pos := range [][2]int{{0, 0}, {3, 0}, {0, 3}, {3, 3}} {
		if got := result.RGBAAt(pos[0], pos[1]); got != black {
			t.Errorf("Pixel (%d,%d): expected black, got %v", pos[0], pos[1], got)
		}
	}

	// Base is untouched
	if got := base.RGBAAt(1, 1); got != black {
		t.Errorf("Expected base image unchanged, got %v at (1,1)", got)
	}
}

func TestOverlayClipped(t *testing.T) {
	base := solidImage(4, 4, black)
	patch := solidImage(2, 2, white)

	tests := []struct {
		name     string
		offsetX  int
		offsetY  int
		inside   [2]int
		outside  [2]int
		expected int // number of white pixels
	}{
		{"bottom-right corner", 3, 3, [2]int{3, 3}, [2]int{2, 2}, 1},
		{"top-left corner", -1, -1, [2]int{0, 0}, [2]int{1, 1}, 1},
		{"fully outside", 10, 10, [2]int{0, 0}, [2]int{3, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Overlay(base, patch, tt.offsetX, tt.offsetY)

			whiteCount := 0
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					if result.RGBAAt(x, y) == white {
						whiteCount++
					}
				}
			}
			if whiteCount != tt.expected {
				t.Errorf("Expected %d white pixels, got %d", tt.expected, whiteCount)
			}

			if tt.expected > 0 {
				if got := result.RGBAAt(tt.inside[0], tt.inside[1]); got != white {
					t.Errorf("Expected white at (%d,%d), got %v", tt.inside[0], tt.inside[1], got)
				}
				if got := result.RGBAAt(tt.outside[0], tt.outside[1]); got != black {
					t.Errorf("Expected black at (%d,%d), got %v", tt.outside[0], tt.outside[1], got)
				}
			}
		})
	}
}
