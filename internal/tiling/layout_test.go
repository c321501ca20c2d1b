package tiling

import (
	"testing"

	"github.com/1broseidon/minwm/internal/platform"
)

func TestNewLayout_OddWidthGoesToRightHalf(t *testing.T) {
	layout, err := NewLayout(1921, 1080)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	left := layout.Rect(ShapeLeft)
	right := layout.Rect(ShapeRight)
	if left.Width != 960 {
		t.Fatalf("expected left width 960, got %d", left.Width)
	}
	if right.X != 960 || right.Width != 961 {
		t.Fatalf("expected right at x=960 width=961, got x=%d width=%d", right.X, right.Width)
	}
	if left.Width+right.Width != 1921 {
		t.Fatalf("expected halves to sum to screen width, got %d", left.Width+right.Width)
	}
}

func TestNewLayout_Table(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          map[Shape]platform.Rect
	}{
		{
			name:  "even",
			width: 1920, height: 1080,
			want: map[Shape]platform.Rect{
				ShapeFull:  {X: 0, Y: 0, Width: 1920, Height: 1080},
				ShapeLeft:  {X: 0, Y: 0, Width: 960, Height: 1080},
				ShapeRight: {X: 960, Y: 0, Width: 960, Height: 1080},
			},
		},
		{
			name:  "one pixel",
			width: 1, height: 1,
			want: map[Shape]platform.Rect{
				ShapeFull:  {X: 0, Y: 0, Width: 1, Height: 1},
				ShapeLeft:  {X: 0, Y: 0, Width: 0, Height: 1},
				ShapeRight: {X: 0, Y: 0, Width: 1, Height: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := NewLayout(tt.width, tt.height)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for shape, want := range tt.want {
				if got := layout.Rect(shape); got != want {
					t.Fatalf("%s: expected %+v, got %+v", shape, want, got)
				}
			}
		})
	}
}

func TestNewLayout_ErrorsOnEmptyScreen(t *testing.T) {
	if _, err := NewLayout(0, 1080); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := NewLayout(1920, -1); err == nil {
		t.Fatalf("expected error for negative height")
	}
}

func TestShapeNext_ClosesAfterThreeSteps(t *testing.T) {
	for _, start := range []Shape{ShapeFull, ShapeLeft, ShapeRight} {
		s := start
		for i := 0; i < 3; i++ {
			s = s.Next()
		}
		if s != start {
			t.Fatalf("expected %s after three steps, got %s", start, s)
		}
	}
	if ShapeFull.Next() != ShapeLeft || ShapeLeft.Next() != ShapeRight || ShapeRight.Next() != ShapeFull {
		t.Fatalf("unexpected cycle order")
	}
}
