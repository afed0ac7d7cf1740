package hexmap

import "log/slog"

// Tile represents a single hex cell: terrain, infrastructure flags, edge
// borders, and display metadata. Its identity is its Coord, which must
// match the key it is stored under in the owning Map.
//
// Terrain, movement cost, fort, and airbase are kept behind accessors:
// movement cost is derived from terrain and never independently settable,
// and fort/airbase are mutually exclusive. The neighbor cache is derived
// state rebuilt by Map.BuildNeighborGraph, never hand-authored.
type Tile struct {
	Coord Coord

	terrain      Terrain
	movementCost int
	fort         bool
	airbase      bool

	Rail      bool
	Road      bool
	Objective bool
	Visible   bool

	Control        Control
	DefaultControl Control

	Label            string
	LargeLabel       string
	LabelSize        LabelSize
	LabelWeight      LabelWeight
	LabelColor       LabelColor
	LabelOutline     float64
	VictoryValue     float64
	AirbaseDamage    float64
	UrbanDamage      int
	Rivers           BorderSet
	Bridges          BorderSet
	PontoonBridges   BorderSet
	DestroyedBridges BorderSet

	neighbors [NumDirections]*Tile
}

// NewTile creates a tile at the given coordinate with clear terrain,
// empty border sets, and default display fields (medium white label,
// normal weight, no control).
func NewTile(c Coord) *Tile {
	return &Tile{
		Coord:            c,
		terrain:          TerrainClear,
		movementCost:     TerrainClear.MovementCost(),
		LabelSize:        LabelSizeMedium,
		LabelWeight:      LabelWeightNormal,
		LabelColor:       LabelColorWhite,
		Rivers:           NewBorderSet(BorderRiver),
		Bridges:          NewBorderSet(BorderBridge),
		PontoonBridges:   NewBorderSet(BorderPontoonBridge),
		DestroyedBridges: NewBorderSet(BorderDestroyedBridge),
	}
}

// Terrain returns the tile's terrain type.
func (t *Tile) Terrain() Terrain {
	return t.terrain
}

// MovementCost returns the movement cost derived from the terrain.
func (t *Tile) MovementCost() int {
	return t.movementCost
}

// SetTerrain sets the terrain and recomputes the movement cost from the
// fixed terrain table. Unknown terrain tags fail with *InvalidTerrainError
// and leave the tile unchanged.
func (t *Tile) SetTerrain(terrain Terrain) error {
	if !terrain.Valid() {
		return &InvalidTerrainError{Terrain: terrain}
	}
	t.terrain = terrain
	t.movementCost = terrain.MovementCost()
	return nil
}

// Fort reports whether the tile has a fortification.
func (t *Tile) Fort() bool {
	return t.fort
}

// Airbase reports whether the tile has an airbase.
func (t *Tile) Airbase() bool {
	return t.airbase
}

// SetFort sets the fortification flag. Fort and airbase are mutually
// exclusive; enabling the fort clears an existing airbase.
func (t *Tile) SetFort(present bool) {
	if present && t.airbase {
		slog.Info("clearing airbase, fort and airbase are exclusive", "coord", t.Coord)
		t.airbase = false
	}
	t.fort = present
}

// SetAirbase sets the airbase flag. Enabling the airbase clears an
// existing fort.
func (t *Tile) SetAirbase(present bool) {
	if present && t.fort {
		slog.Info("clearing fort, fort and airbase are exclusive", "coord", t.Coord)
		t.fort = false
	}
	t.airbase = present
}

// Neighbor returns the cached neighbor tile in direction d, or nil.
func (t *Tile) Neighbor(d Direction) *Tile {
	return t.neighbors[d]
}

// SetNeighbor updates the local neighbor cache for direction d. It never
// touches the owning Map; the cache is rebuilt wholesale by
// Map.BuildNeighborGraph.
func (t *Tile) SetNeighbor(d Direction, neighbor *Tile) {
	t.neighbors[d] = neighbor
}

// ClearNeighbors empties the neighbor cache.
func (t *Tile) ClearNeighbors() {
	t.neighbors = [NumDirections]*Tile{}
}

// Validate reports whether the tile is internally consistent: known
// terrain, movement cost matching the terrain table, and fort/airbase
// not both set. This is a query, not a precondition check; it returns
// false rather than failing.
func (t *Tile) Validate() bool {
	if !t.terrain.Valid() {
		return false
	}
	if t.movementCost != t.terrain.MovementCost() {
		return false
	}
	if t.fort && t.airbase {
		return false
	}
	return true
}
