package game

import (
	"encoding/json"
	"math"
)

const deg2rad = math.Pi / 180

// Vector2 is a 2D position or velocity.
type Vector2 struct {
	X float32 `json:"x" msgpack:"x"`
	Y float32 `json:"y" msgpack:"y"`
}

// Sum returns a + b.
func Sum(a, b Vector2) Vector2 {
	return Vector2{X: a.X + b.X, Y: a.Y + b.Y}
}

// Add returns v + other.
func (v Vector2) Add(other Vector2) Vector2 {
	return Sum(v, other)
}

// Scale returns v multiplied by s.
func (v Vector2) Scale(s float32) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

// DistSq returns the squared distance between v and other.
func (v Vector2) DistSq(other Vector2) float32 {
	dx := other.X - v.X
	dy := other.Y - v.Y
	return dx*dx + dy*dy
}

// FromAngle builds a vector of the given length pointing along angle,
// measured in degrees from the +X axis.
func FromAngle(angle, length float32) Vector2 {
	rad := float64(angle) * deg2rad
	return Vector2{X: length * float32(math.Cos(rad)), Y: length * forwardY(rad)}
}

// forwardY is the vertical component of a unit heading.
func forwardY(rad float64) float32 {
	return float32(math.Sin(rad))
}

// jsonFloat marshals like a float32 but writes null for NaN and the
// infinities, which encoding/json refuses.
type jsonFloat float32

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float32(f))
}

func finite(values ...float32) bool {
	for _, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler. Non-finite components are
// written as null.
func (v Vector2) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X jsonFloat `json:"x"`
		Y jsonFloat `json:"y"`
	}{jsonFloat(v.X), jsonFloat(v.Y)})
}
