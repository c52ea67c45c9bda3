/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package strip

// Canvas constants at 1x. The wallet renders the strip slot at a fixed size,
// so the canvas never grows with the stamp count; only the grid inside adapts.
const (
	baseCanvasWidth  = 375
	baseCanvasHeight = 123

	// The platform chrome may crop the top and bottom margins of the strip.
	// Stamps are confined to this fraction of the canvas height.
	safeAreaNum = 21
	safeAreaDen = 25 // 84%

	minStampSize = 16
	maxStampSize = 50
)

// gapFor returns the inter-stamp gap at 1x, tiered by count so sparse strips
// breathe and dense ones still fit.
func gapFor(count int) int {
	switch {
	case count <= 5:
		return 12
	case count <= 12:
		return 8
	case count <= 20:
		return 6
	default:
		return 4
	}
}

// Geometry is the absolute pixel geometry for one rendered strip variant.
type Geometry struct {
	Scale          int
	Layout         Layout
	CanvasWidth    int
	CanvasHeight   int
	SafeAreaTop    int
	SafeAreaHeight int
	Gap            int
	StampDiameter  int
}

// GeometryFor derives the pixel geometry for a stamp count at the given
// scale. It is a pure function: no I/O, deterministic for equal inputs.
func GeometryFor(count, scale int) (Geometry, error) {
	if scale < 1 || scale > 3 {
		return Geometry{}, ErrInvalidScale
	}
	layout, err := LayoutFor(count)
	if err != nil {
		return Geometry{}, err
	}

	g := Geometry{
		Scale:        scale,
		Layout:       layout,
		CanvasWidth:  baseCanvasWidth * scale,
		CanvasHeight: baseCanvasHeight * scale,
		Gap:          gapFor(count) * scale,
	}
	g.SafeAreaHeight = g.CanvasHeight * safeAreaNum / safeAreaDen
	g.SafeAreaTop = (g.CanvasHeight - g.SafeAreaHeight) / 2

	availWidth := g.CanvasWidth - (layout.Columns-1)*g.Gap
	availHeight := g.SafeAreaHeight - (layout.Rows-1)*g.Gap
	d := availWidth / layout.Columns
	if byHeight := availHeight / layout.Rows; byHeight < d {
		d = byHeight
	}
	if min := minStampSize * scale; d < min {
		d = min
	}
	if max := maxStampSize * scale; d > max {
		d = max
	}
	g.StampDiameter = d
	return g, nil
}

// blockSize is the bounding box of the whole stamp grid.
func (g Geometry) blockSize() (w, h int) {
	w = g.Layout.Columns*g.StampDiameter + (g.Layout.Columns-1)*g.Gap
	h = g.Layout.Rows*g.StampDiameter + (g.Layout.Rows-1)*g.Gap
	return w, h
}

// CellOrigin returns the top-left pixel of the i-th stamp cell, row-major,
// with the grid block centered inside the safe area.
func (g Geometry) CellOrigin(i int) (x, y int) {
	blockW, blockH := g.blockSize()
	originX := (g.CanvasWidth - blockW) / 2
	originY := g.SafeAreaTop + (g.SafeAreaHeight-blockH)/2

	row := i / g.Layout.Columns
	col := i % g.Layout.Columns
	x = originX + col*(g.StampDiameter+g.Gap)
	y = originY + row*(g.StampDiameter+g.Gap)
	return x, y
}
