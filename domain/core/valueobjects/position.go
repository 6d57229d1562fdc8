package valueobjects

import "math"

// Position is a value object representing a 2D point in layout space.
// Value objects are immutable and have no identity beyond their value.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a Position from coordinates
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// DistanceTo returns the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Translate returns a new position offset by dx, dy
func (p Position) Translate(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Clamp returns a new position constrained to the [0,w] x [0,h] viewport
func (p Position) Clamp(w, h float64) Position {
	return Position{
		X: math.Min(math.Max(p.X, 0), w),
		Y: math.Min(math.Max(p.Y, 0), h),
	}
}
