/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package strip

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Assets are the decoded source images a strip is composited from.
// Icon is required; Background is optional.
type Assets struct {
	Icon       image.Image
	Background image.Image
}

// Style controls the panel fill and blending applied while compositing.
type Style struct {
	PanelColor color.NRGBA
	// BackgroundOpacity is applied to the background photo, (0, 1].
	BackgroundOpacity float64
	// UnearnedDim attenuates the RGB channels of unearned stamp icons.
	UnearnedDim float64
}

// DefaultStyle matches the stock loyalty card look.
func DefaultStyle() Style {
	return Style{
		PanelColor:        color.NRGBA{R: 0x8b, G: 0x45, B: 0x13, A: 0xff},
		BackgroundOpacity: 0.85,
		UnearnedDim:       0.35,
	}
}

// Compositor renders stamp strips. It holds no per-request state and is safe
// for concurrent use.
type Compositor struct {
	style Style
}

func NewCompositor(style Style) *Compositor {
	if style.BackgroundOpacity <= 0 || style.BackgroundOpacity > 1 {
		style.BackgroundOpacity = DefaultStyle().BackgroundOpacity
	}
	if style.UnearnedDim <= 0 || style.UnearnedDim >= 1 {
		style.UnearnedDim = DefaultStyle().UnearnedDim
	}
	return &Compositor{style: style}
}

// LoadAssets decodes PNG asset bytes. The icon is mandatory; background may
// be nil. Undecodable or alpha-only images fail with ErrAssetInvalid.
func LoadAssets(iconPNG, backgroundPNG []byte) (Assets, error) {
	if len(iconPNG) == 0 {
		return Assets{}, fmt.Errorf("stamp icon: %w", ErrAssetMissing)
	}
	icon, err := png.Decode(bytes.NewReader(iconPNG))
	if err != nil {
		return Assets{}, fmt.Errorf("stamp icon: %w: %v", ErrAssetInvalid, err)
	}
	a := Assets{Icon: icon}
	if len(backgroundPNG) > 0 {
		bg, err := png.Decode(bytes.NewReader(backgroundPNG))
		if err != nil {
			return Assets{}, fmt.Errorf("background: %w: %v", ErrAssetInvalid, err)
		}
		switch bg.(type) {
		case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
			// the blend expects color channels
			return Assets{}, fmt.Errorf("background: %w: missing color channels", ErrAssetInvalid)
		}
		if bg.Bounds().Empty() {
			return Assets{}, fmt.Errorf("background: %w: empty bounds", ErrAssetInvalid)
		}
		a.Background = bg
	}
	return a, nil
}

// Render composites the strip for earned of required stamps at the given
// scale. Slots [0,earned) use the earned variant, [earned,required) the
// dimmed one, row-major. earned above required is clamped to required; the
// earned/unearned boundary never depends on scale.
func (c *Compositor) Render(a Assets, earned, required, scale int) (*image.NRGBA, error) {
	if a.Icon == nil {
		return nil, fmt.Errorf("stamp icon: %w", ErrAssetMissing)
	}
	if earned < 0 {
		return nil, fmt.Errorf("earned count: %w", ErrNegativeCount)
	}
	g, err := GeometryFor(required, scale)
	if err != nil {
		return nil, err
	}
	if required > g.Layout.Capacity() {
		return nil, fmt.Errorf("%d stamps, %dx%d grid: %w",
			required, g.Layout.Rows, g.Layout.Columns, ErrTooManyStamps)
	}
	if earned > required {
		earned = required
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, g.CanvasWidth, g.CanvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(c.style.PanelColor), image.Point{}, draw.Src)

	if a.Background != nil {
		scaled := image.NewNRGBA(canvas.Bounds())
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), a.Background, a.Background.Bounds(), xdraw.Src, nil)
		alpha := image.NewUniform(color.Alpha{A: uint8(c.style.BackgroundOpacity*255 + 0.5)})
		draw.DrawMask(canvas, canvas.Bounds(), scaled, image.Point{}, alpha, image.Point{}, draw.Over)
	}

	d := g.StampDiameter
	earnedIcon := scaleIcon(a.Icon, d)
	unearnedIcon := dim(earnedIcon, c.style.UnearnedDim)
	mask := circleMask(d)

	for i := 0; i < required; i++ {
		x, y := g.CellOrigin(i)
		src := unearnedIcon
		if i < earned {
			src = earnedIcon
		}
		rect := image.Rect(x, y, x+d, y+d)
		draw.DrawMask(canvas, rect, src, image.Point{}, mask, image.Point{}, draw.Over)
	}
	return canvas, nil
}

// EncodePNG serializes a rendered strip. The encoder carries no timestamps
// or ancillary chunks, so equal pixels always produce equal bytes; the
// manifest digests depend on that.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode strip png: %w", err)
	}
	return buf.Bytes(), nil
}

func scaleIcon(icon image.Image, d int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, d, d))
	xdraw.CatmullRom.Scale(out, out.Bounds(), icon, icon.Bounds(), xdraw.Src, nil)
	return out
}

// dim multiplies the color channels by f, leaving alpha untouched.
func dim(src *image.NRGBA, f float64) *image.NRGBA {
	out := image.NewNRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i+0] = uint8(float64(out.Pix[i+0]) * f)
		out.Pix[i+1] = uint8(float64(out.Pix[i+1]) * f)
		out.Pix[i+2] = uint8(float64(out.Pix[i+2]) * f)
	}
	return out
}

// circleMask builds a d-by-d coverage mask with a one-pixel soft edge.
func circleMask(d int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, d, d))
	r := float64(d) / 2
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			dx := float64(x) + 0.5 - r
			dy := float64(y) + 0.5 - r
			dist := dx*dx + dy*dy
			edge := r - 0.5
			var a uint8
			switch {
			case dist <= edge*edge:
				a = 0xff
			case dist >= r*r:
				a = 0
			default:
				// linear falloff across the boundary pixel
				t := (r - math.Sqrt(dist)) / 0.5
				if t < 0 {
					t = 0
				} else if t > 1 {
					t = 1
				}
				a = uint8(t*255 + 0.5)
			}
			mask.SetAlpha(x, y, color.Alpha{A: a})
		}
	}
	return mask
}
