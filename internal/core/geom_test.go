package core

import (
	"math"
	"testing"
)

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected bool
	}{
		{"overlapping rects", NewRect(0, 0, 10, 10), NewRect(5, 5, 10, 10), true},
		{"non-overlapping horizontal", NewRect(0, 0, 10, 10), NewRect(15, 0, 10, 10), false},
		{"adjacent horizontal (no overlap)", NewRect(0, 0, 10, 10), NewRect(10, 0, 10, 10), false},
		{"contained rect", NewRect(0, 0, 20, 20), NewRect(5, 5, 5, 5), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Intersects(tc.b); got != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Intersects(tc.a); got != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 15, 15, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right edge (exclusive)", 30, 25, false},
		{"outside left", 5, 15, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.x, tc.y); got != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestBoxOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box
		expected bool
	}{
		{"overlap", BoxAt(V(0, 0), V(2, 2)), BoxAt(V(1, 1), V(2, 2)), true},
		{"touching edges", BoxAt(V(0, 0), V(2, 2)), BoxAt(V(2, 0), V(2, 2)), false},
		{"apart", BoxAt(V(0, 0), V(1, 1)), BoxAt(V(5, 5), V(1, 1)), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.expected {
				t.Errorf("Overlaps() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestBoxPenetration(t *testing.T) {
	tests := []struct {
		name     string
		mover    Box
		wall     Box
		expected Vec2
	}{
		{"push left", BoxAt(V(0, 0), V(2, 2)), BoxAt(V(1.5, -5), V(4, 20)), V(-0.5, 0)},
		{"push right", BoxAt(V(3.5, 0), V(2, 2)), BoxAt(V(0, -5), V(4, 20)), V(0.5, 0)},
		{"push up", BoxAt(V(0, 0), V(2, 2)), BoxAt(V(-5, 1.75), V(20, 4)), V(0, -0.25)},
		{"no overlap", BoxAt(V(0, 0), V(1, 1)), BoxAt(V(3, 3), V(1, 1)), V(0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.mover.Penetration(tc.wall)
			if math.Abs(got.X-tc.expected.X) > 1e-9 || math.Abs(got.Y-tc.expected.Y) > 1e-9 {
				t.Errorf("Penetration() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestCircleOverlaps(t *testing.T) {
	box := BoxAt(V(0, 0), V(2, 2))
	tests := []struct {
		name    string
		c       Circle
		circle  Circle
		withBox bool
		withC   bool
	}{
		{"center inside box", Circle{C: V(1, 1), R: 0.5}, Circle{C: V(5, 5), R: 1}, true, false},
		{"near corner", Circle{C: V(2.5, 2.5), R: 0.8}, Circle{C: V(4, 2.5), R: 0.8}, true, true},
		{"past corner", Circle{C: V(2.5, 2.5), R: 0.7}, Circle{C: V(4, 2.5), R: 0.75}, false, false},
		{"touching edge", Circle{C: V(3, 1), R: 1}, Circle{C: V(5, 1), R: 1}, false, false},
		{"beside edge", Circle{C: V(2.5, 1), R: 1}, Circle{C: V(2.5, 2), R: 0.1}, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.OverlapsBox(box); got != tc.withBox {
				t.Errorf("OverlapsBox() = %v, expected %v", got, tc.withBox)
			}
			if got := tc.c.Overlaps(tc.circle); got != tc.withC {
				t.Errorf("Overlaps() = %v, expected %v", got, tc.withC)
			}
		})
	}
}

func TestCirclePenetration(t *testing.T) {
	box := BoxAt(V(0, 0), V(2, 2))

	pen := Circle{C: V(2.5, 1), R: 1}.PenetrationBox(box)
	if math.Abs(pen.X-0.5) > 1e-9 || pen.Y != 0 {
		t.Errorf("PenetrationBox() = %v, expected (0.5, 0)", pen)
	}
	if pen := (Circle{C: V(1.8, 1), R: 0.5}).PenetrationBox(box); math.Abs(pen.X-0.7) > 1e-9 || pen.Y != 0 {
		t.Errorf("PenetrationBox() from inside = %v, expected (0.7, 0)", pen)
	}
	if pen := (Circle{C: V(5, 5), R: 1}).PenetrationBox(box); pen != (Vec2{}) {
		t.Errorf("PenetrationBox() apart = %v, expected zero", pen)
	}

	pen = Circle{C: V(0, 0), R: 1}.Penetration(Circle{C: V(1.5, 0), R: 1})
	if math.Abs(pen.X+0.5) > 1e-9 || pen.Y != 0 {
		t.Errorf("Penetration() = %v, expected (-0.5, 0)", pen)
	}

	if c := CircleAt(V(1, 2), 0.5); c.C != V(1.5, 2.5) || c.Bounds() != BoxAt(V(1, 2), V(1, 1)) {
		t.Errorf("CircleAt() = %+v, expected center (1.5, 2.5)", c)
	}
}

func TestVecMath(t *testing.T) {
	v := V(3, 4)
	if v.Len() != 5 {
		t.Errorf("Len() = %f, expected 5", v.Len())
	}
	n := v.Normalize()
	if math.Abs(n.Len()-1) > 1e-9 {
		t.Errorf("Normalize().Len() = %f, expected 1", n.Len())
	}
	if (Vec2{}).Normalize() != (Vec2{}) {
		t.Error("Normalize of zero vector should be zero")
	}
	if got := LerpVec(V(0, 0), V(10, 20), 0.5); got != V(5, 10) {
		t.Errorf("LerpVec() = %v, expected (5, 10)", got)
	}
	if got := Dist(V(1, 1), V(4, 5)); got != 5 {
		t.Errorf("Dist() = %f, expected 5", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
	if got := ClampF(1.5, 0, 1); got != 1 {
		t.Errorf("ClampF(1.5, 0, 1) = %f, expected 1", got)
	}
}

func TestHandlePacking(t *testing.T) {
	h := MakeHandle(7, 3)
	if h.Index() != 7 || h.Generation() != 3 {
		t.Errorf("MakeHandle(7, 3) unpacked to (%d, %d)", h.Index(), h.Generation())
	}
	if h.IsZero() {
		t.Error("non-zero handle reported IsZero")
	}
	if !NoHandle.IsZero() {
		t.Error("NoHandle should be zero")
	}
}
