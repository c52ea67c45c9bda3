/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package strip

// Layout is the row/column grid chosen for a stamp count.
type Layout struct {
	Rows    int
	Columns int
}

// MaxStamps is the largest stamp count the widest grid can hold.
// Counts above this are rejected by callers before rendering.
const MaxStamps = 30

// LayoutFor returns the grid for the given stamp count.
//
// The breakpoints are a fixed design table, not a packing optimization:
// small counts stay on a single row, larger counts move to wider, shallower
// grids so the strip reads left-to-right. Do not re-derive these.
func LayoutFor(count int) (Layout, error) {
	if count < 0 {
		return Layout{}, ErrNegativeCount
	}
	switch {
	case count <= 1:
		// at least one cell even for zero
		return Layout{Rows: 1, Columns: 1}, nil
	case count <= 5:
		return Layout{Rows: 1, Columns: count}, nil
	case count <= 10:
		return Layout{Rows: 2, Columns: 5}, nil
	case count <= 12:
		return Layout{Rows: 2, Columns: 6}, nil
	case count <= 16:
		return Layout{Rows: 2, Columns: 8}, nil
	case count <= 18:
		return Layout{Rows: 2, Columns: 9}, nil
	case count <= 20:
		return Layout{Rows: 3, Columns: 7}, nil
	case count <= 24:
		return Layout{Rows: 3, Columns: 8}, nil
	case count <= 27:
		return Layout{Rows: 3, Columns: 9}, nil
	default:
		return Layout{Rows: 3, Columns: 10}, nil
	}
}

// Capacity is the number of cells the grid provides.
func (l Layout) Capacity() int {
	return l.Rows * l.Columns
}
