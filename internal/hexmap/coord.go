// Package hexmap provides the hex grid terrain model: coordinates, tiles,
// edge borders, and the map container with its structural validators.
// Uses odd-r offset coordinates (odd rows shifted +x, y grows southward).
package hexmap

import "fmt"

// Coord represents a position on the hex grid using offset coordinates.
// Equality and hashing are exact integer comparisons; Coord is the sole
// key type for the map container.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the coordinate as "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction identifies one of the six hex edges in fixed cyclic order.
type Direction uint8

const (
	NorthWest Direction = iota
	NorthEast
	East
	SouthEast
	SouthWest
	West

	// NumDirections is the number of hex edges.
	NumDirections = 6
)

var directionNames = [NumDirections]string{"NW", "NE", "E", "SE", "SW", "W"}

// Directions lists all six directions in canonical order.
var Directions = [NumDirections]Direction{
	NorthWest, NorthEast, East, SouthEast, SouthWest, West,
}

// Valid reports whether d is one of the six known directions.
func (d Direction) Valid() bool {
	return d < NumDirections
}

// String returns the short compass name of the direction.
func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// Opposite returns the direction across the hex: NW<->SE, NE<->SW, E<->W.
func (d Direction) Opposite() Direction {
	return (d + 3) % NumDirections
}

// ParseDirection parses a short compass name ("NW", "NE", "E", "SE",
// "SW", "W") into a Direction.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if s == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("hexmap: invalid Direction value: %q", s)
}

// neighborOffsets defines the per-direction coordinate deltas for the
// odd-r offset layout, indexed by row parity (y&1) then direction.
// Odd rows are shifted half a hex toward +x; y increases southward.
var neighborOffsets = [2][NumDirections]Coord{
	// Even rows.
	{
		{X: -1, Y: -1}, // NW
		{X: 0, Y: -1},  // NE
		{X: 1, Y: 0},   // E
		{X: 0, Y: 1},   // SE
		{X: -1, Y: 1},  // SW
		{X: -1, Y: 0},  // W
	},
	// Odd rows.
	{
		{X: 0, Y: -1}, // NW
		{X: 1, Y: -1}, // NE
		{X: 1, Y: 0},  // E
		{X: 1, Y: 1},  // SE
		{X: 0, Y: 1},  // SW
		{X: -1, Y: 0}, // W
	},
}

// NeighborOf returns the coordinate adjacent to c in direction d.
// For every c and d, NeighborOf(NeighborOf(c, d), d.Opposite()) == c.
func NeighborOf(c Coord, d Direction) Coord {
	off := neighborOffsets[c.Y&1][d]
	return Coord{X: c.X + off.X, Y: c.Y + off.Y}
}
