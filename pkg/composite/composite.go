package composite

import (
	"fmt"
	"image"
	"image/color"
)

// Resize scales src to the given dimensions using bilinear interpolation
func Resize(src *image.RGBA, width, height int) *image.RGBA {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	bounds := src.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()
	if width == 0 || height == 0 || srcWidth == 0 || srcHeight == 0 {
		return dst
	}

	xScale := float64(srcWidth) / float64(width)
	yScale := float64(srcHeight) / float64(height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Map the destination pixel center into source coordinates
			sx := (float64(x)+0.5)*xScale - 0.5
			sy := (float64(y)+0.5)*yScale - 0.5
			if sx < 0 {
				sx = 0
			}
			if sy < 0 {
				sy = 0
			}

			x0 := int(sx)
			y0 := int(sy)
			x1 := minInt(x0+1, srcWidth-1)
			y1 := minInt(y0+1, srcHeight-1)

			dx := sx - float64(x0)
			dy := sy - float64(y0)

			c00 := src.RGBAAt(bounds.Min.X+x0, bounds.Min.Y+y0)
			c01 := src.RGBAAt(bounds.Min.X+x0, bounds.Min.Y+y1)
			c10 := src.RGBAAt(bounds.Min.X+x1, bounds.Min.Y+y0)
			c11 := src.RGBAAt(bounds.Min.X+x1, bounds.Min.Y+y1)

			dst.SetRGBA(x, y, interpolateColors(c00, c01, c10, c11, dx, dy))
		}
	}

	return dst
}

// Blend mixes two same-sized images: result = base*(1-alpha) + overlay*alpha
func Blend(base, overlay *image.RGBA, alpha float64) (*image.RGBA, error) {
	baseBounds := base.Bounds()
	overlayBounds := overlay.Bounds()
	if baseBounds.Dx() != overlayBounds.Dx() || baseBounds.Dy() != overlayBounds.Dy() {
		return nil, fmt.Errorf("blend images must have matching dimensions: base %dx%d, overlay %dx%d",
			baseBounds.Dx(), baseBounds.Dy(), overlayBounds.Dx(), overlayBounds.Dy())
	}

	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	result := image.NewRGBA(image.Rect(0, 0, baseBounds.Dx(), baseBounds.Dy()))
	for y := 0; y < baseBounds.Dy(); y++ {
		for x := 0; x < baseBounds.Dx(); x++ {
			b := base.RGBAAt(baseBounds.Min.X+x, baseBounds.Min.Y+y)
			o := overlay.RGBAAt(overlayBounds.Min.X+x, overlayBounds.Min.Y+y)
			result.SetRGBA(x, y, color.RGBA{
				R: lerpChannel(b.R, o.R, alpha),
				G: lerpChannel(b.G, o.G, alpha),
				B: lerpChannel(b.B, o.B, alpha),
				A: lerpChannel(b.A, o.A, alpha),
			})
		}
	}

	return result, nil
}

// Overlay draws overlay onto a copy of base at the given offset,
// clipping anything that falls outside the base image
func Overlay(base, overlay *image.RGBA, offsetX, offsetY int) *image.RGBA {
	result := cloneRGBA(base)

	baseBounds := base.Bounds()
	overlayBounds := overlay.Bounds()

	for y := 0; y < overlayBounds.Dy(); y++ {
		for x := 0; x < overlayBounds.Dx(); x++ {
			dstX := offsetX + x
			dstY := offsetY + y
			if dstX < 0 || dstX >= baseBounds.Dx() || dstY < 0 || dstY >= baseBounds.Dy() {
				continue
			}
			result.SetRGBA(dstX, dstY, overlay.RGBAAt(overlayBounds.Min.X+x, overlayBounds.Min.Y+y))
		}
	}

	return result
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	bounds := img.Bounds()
	clone := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			clone.SetRGBA(x, y, img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return clone
}

func interpolateColors(c00, c01, c10, c11 color.RGBA, dx, dy float64) color.RGBA {
	blend := func(v00, v01, v10, v11 uint8) uint8 {
		top := float64(v00)*(1-dx) + float64(v10)*dx
		bottom := float64(v01)*(1-dx) + float64(v11)*dx
		return uint8(top*(1-dy) + bottom*dy + 0.5)
	}
	return color.RGBA{
		R: blend(c00.R, c01.R, c10.R, c11.R),
		G: blend(c00.G, c01.G, c10.G, c11.G),
		B: blend(c00.B, c01.B, c10.B, c11.B),
		A: blend(c00.A, c01.A, c10.A, c11.A),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t + 0.5)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
