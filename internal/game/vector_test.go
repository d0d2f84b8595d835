package game

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestSum(t *testing.T) {
	got := Sum(Vector2{X: 1, Y: -2}, Vector2{X: 0.5, Y: 4})
	if got != (Vector2{X: 1.5, Y: 2}) {
		t.Fatalf("Sum = %+v", got)
	}
}

func TestFromAngle(t *testing.T) {
	tests := []struct {
		angle, length float32
		want          Vector2
	}{
		{0, 11, Vector2{X: 11, Y: 0}},
		{90, 20, Vector2{X: 0, Y: 20}},
		{180, 1, Vector2{X: -1, Y: 0}},
		{270, 2, Vector2{X: 0, Y: -2}},
		{45, float32(math.Sqrt2), Vector2{X: 1, Y: 1}},
	}
	for _, tt := range tests {
		got := FromAngle(tt.angle, tt.length)
		if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) {
			t.Errorf("FromAngle(%v, %v) = %+v, want %+v", tt.angle, tt.length, got, tt.want)
		}
	}
}
