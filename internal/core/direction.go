package core

// Direction is a compass heading. The ordinal values are part of the
// snapshot format handed to learners and must not be reordered.
type Direction uint8

const (
	DirLeft Direction = iota
	DirUp
	DirRight
	DirDown
)

// Directions lists every heading in ordinal order.
var Directions = [4]Direction{DirLeft, DirUp, DirRight, DirDown}

// Inverse returns the opposite heading.
func (d Direction) Inverse() Direction {
	return (d + 2) % 4
}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	return d <= DirDown
}

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	default:
		return "unknown"
	}
}

// ParseDirection converts a name produced by String back to a Direction.
func ParseDirection(s string) (Direction, bool) {
	for _, d := range Directions {
		if d.String() == s {
			return d, true
		}
	}
	return DirLeft, false
}
