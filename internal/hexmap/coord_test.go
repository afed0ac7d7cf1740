package hexmap

import "testing"

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		d    Direction
		want Direction
	}{
		{NorthWest, SouthEast},
		{NorthEast, SouthWest},
		{East, West},
		{SouthEast, NorthWest},
		{SouthWest, NorthEast},
		{West, East},
	}
	for _, tc := range tests {
		if got := tc.d.Opposite(); got != tc.want {
			t.Errorf("%s.Opposite() = %s, want %s", tc.d, got, tc.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range Directions {
		got, err := ParseDirection(d.String())
		if err != nil {
			t.Fatalf("ParseDirection(%q) error: %v", d.String(), err)
		}
		if got != d {
			t.Errorf("ParseDirection(%q) = %s, want %s", d.String(), got, d)
		}
	}
	if _, err := ParseDirection("north"); err == nil {
		t.Error("ParseDirection(\"north\") should fail")
	}
}

func TestNeighborOfInvolution(t *testing.T) {
	// NeighborOf composed with the opposite direction must be the
	// identity for every coordinate and direction, including negative
	// and odd-row coordinates.
	coords := []Coord{
		{0, 0}, {1, 0}, {0, 1}, {1, 1},
		{7, 3}, {4, 8}, {-2, -3}, {-1, 5}, {3, -1},
	}
	for _, c := range coords {
		for _, d := range Directions {
			n := NeighborOf(c, d)
			back := NeighborOf(n, d.Opposite())
			if back != c {
				t.Errorf("NeighborOf(NeighborOf(%s, %s), %s) = %s, want %s",
					c, d, d.Opposite(), back, c)
			}
		}
	}
}

func TestNeighborOfEvenRow(t *testing.T) {
	c := Coord{X: 2, Y: 2}
	tests := []struct {
		d    Direction
		want Coord
	}{
		{East, Coord{3, 2}},
		{West, Coord{1, 2}},
		{NorthEast, Coord{2, 1}},
		{NorthWest, Coord{1, 1}},
		{SouthEast, Coord{2, 3}},
		{SouthWest, Coord{1, 3}},
	}
	for _, tc := range tests {
		if got := NeighborOf(c, tc.d); got != tc.want {
			t.Errorf("NeighborOf(%s, %s) = %s, want %s", c, tc.d, got, tc.want)
		}
	}
}

func TestNeighborOfOddRow(t *testing.T) {
	c := Coord{X: 2, Y: 3}
	tests := []struct {
		d    Direction
		want Coord
	}{
		{East, Coord{3, 3}},
		{West, Coord{1, 3}},
		{NorthEast, Coord{3, 2}},
		{NorthWest, Coord{2, 2}},
		{SouthEast, Coord{3, 4}},
		{SouthWest, Coord{2, 4}},
	}
	for _, tc := range tests {
		if got := NeighborOf(c, tc.d); got != tc.want {
			t.Errorf("NeighborOf(%s, %s) = %s, want %s", c, tc.d, got, tc.want)
		}
	}
}

func TestNeighborsDistinct(t *testing.T) {
	// All six neighbors of a cell must be distinct and differ from the
	// cell itself.
	for _, c := range []Coord{{0, 0}, {5, 4}, {5, 5}} {
		seen := map[Coord]bool{c: true}
		for _, d := range Directions {
			n := NeighborOf(c, d)
			if seen[n] {
				t.Errorf("NeighborOf(%s, %s) = %s collides", c, d, n)
			}
			seen[n] = true
		}
	}
}
