package tiling

import (
	"fmt"

	"github.com/1broseidon/minwm/internal/platform"
)

// Shape is a window's tiling mode.
type Shape uint8

const (
	ShapeFull Shape = iota
	ShapeLeft
	ShapeRight

	numShapes
)

// DefaultShape is given to newly managed windows so two windows tile side
// by side without user action.
const DefaultShape = ShapeLeft

// String returns the string representation of the shape
func (s Shape) String() string {
	switch s {
	case ShapeFull:
		return "full"
	case ShapeLeft:
		return "left"
	case ShapeRight:
		return "right"
	default:
		return "unknown"
	}
}

// Next returns the shape that follows s in the cycle full, left, right.
func (s Shape) Next() Shape {
	return (s + 1) % numShapes
}

// Layout holds the rectangle for every shape on one screen.
type Layout struct {
	rects [numShapes]platform.Rect
}

// NewLayout computes the shape table for a width x height screen. The left
// half is floor(width/2) wide; the right half absorbs the odd pixel.
func NewLayout(width, height int) (Layout, error) {
	if width <= 0 || height <= 0 {
		return Layout{}, fmt.Errorf("invalid screen size %dx%d", width, height)
	}

	leftWidth := width / 2

	var l Layout
	l.rects[ShapeFull] = platform.Rect{X: 0, Y: 0, Width: width, Height: height}
	l.rects[ShapeLeft] = platform.Rect{X: 0, Y: 0, Width: leftWidth, Height: height}
	l.rects[ShapeRight] = platform.Rect{X: leftWidth, Y: 0, Width: width - leftWidth, Height: height}
	return l, nil
}

// Rect returns the rectangle for a shape. Unknown shapes map to full.
func (l Layout) Rect(s Shape) platform.Rect {
	if s >= numShapes {
		return l.rects[ShapeFull]
	}
	return l.rects[s]
}
