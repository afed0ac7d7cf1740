package hexmap

import "fmt"

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainClear    Terrain = iota // Open ground — baseline movement
	TerrainForest                  // Dense woods
	TerrainHills                   // Broken high ground
	TerrainMountain                // Steep rock, near-impassable
	TerrainSwamp                   // Marshland
	TerrainUrban                   // Built-up city blocks
	TerrainSand                    // Desert and dunes
	TerrainWater                   // Open water — impassable on foot
)

var terrainNames = map[Terrain]string{
	TerrainClear:    "clear",
	TerrainForest:   "forest",
	TerrainHills:    "hills",
	TerrainMountain: "mountain",
	TerrainSwamp:    "swamp",
	TerrainUrban:    "urban",
	TerrainSand:     "sand",
	TerrainWater:    "water",
}

// movementCosts is the fixed terrain -> movement cost table. A tile's
// movement cost is always derived from this table, never set directly.
var movementCosts = map[Terrain]int{
	TerrainClear:    1,
	TerrainForest:   2,
	TerrainHills:    2,
	TerrainMountain: 3,
	TerrainSwamp:    3,
	TerrainUrban:    1,
	TerrainSand:     2,
	TerrainWater:    0,
}

// Valid reports whether t is one of the known terrain types.
func (t Terrain) Valid() bool {
	_, ok := movementCosts[t]
	return ok
}

// String returns the terrain name.
func (t Terrain) String() string {
	if name, ok := terrainNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Terrain(%d)", uint8(t))
}

// MovementCost returns the fixed movement cost for the terrain.
// Unknown terrain values cost 0; check Valid first when it matters.
func (t Terrain) MovementCost() int {
	return movementCosts[t]
}

// ParseTerrain parses a terrain name into a Terrain.
func ParseTerrain(s string) (Terrain, error) {
	for t, name := range terrainNames {
		if s == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("hexmap: invalid Terrain value: %q", s)
}

// InvalidTerrainError reports a terrain tag outside the known set.
type InvalidTerrainError struct {
	Terrain Terrain
}

func (e *InvalidTerrainError) Error() string {
	return fmt.Sprintf("hexmap: invalid terrain value %d", uint8(e.Terrain))
}

// Control identifies which side holds a tile.
type Control uint8

const (
	ControlNone Control = iota
	ControlFriendly
	ControlEnemy
	ControlNeutral
)

// Valid reports whether c is a known control state.
func (c Control) Valid() bool {
	return c <= ControlNeutral
}

// String returns the control-state name.
func (c Control) String() string {
	switch c {
	case ControlNone:
		return "none"
	case ControlFriendly:
		return "friendly"
	case ControlEnemy:
		return "enemy"
	case ControlNeutral:
		return "neutral"
	}
	return fmt.Sprintf("Control(%d)", uint8(c))
}

// Label display enums. The tile constructor defaults are LabelSizeMedium,
// LabelWeightNormal, and LabelColorWhite.
type (
	LabelSize   uint8
	LabelWeight uint8
	LabelColor  uint8
)

const (
	LabelSizeSmall LabelSize = iota
	LabelSizeMedium
	LabelSizeLarge
)

const (
	LabelWeightNormal LabelWeight = iota
	LabelWeightBold
)

const (
	LabelColorWhite LabelColor = iota
	LabelColorBlack
	LabelColorYellow
	LabelColorRed
)

// Configuration selects one of the fixed map sizes.
type Configuration uint8

const (
	ConfigNone Configuration = iota
	ConfigSmall
	ConfigLarge
)

var configurationNames = map[Configuration]string{
	ConfigNone:  "none",
	ConfigSmall: "small",
	ConfigLarge: "large",
}

// Valid reports whether c is a recognized configuration tag.
func (c Configuration) Valid() bool {
	_, ok := configurationNames[c]
	return ok
}

// String returns the configuration name.
func (c Configuration) String() string {
	if name, ok := configurationNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Configuration(%d)", uint8(c))
}

// ParseConfiguration parses a configuration name.
func ParseConfiguration(s string) (Configuration, error) {
	for c, name := range configurationNames {
		if s == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("hexmap: invalid Configuration value: %q", s)
}

// Dimensions returns the fixed width and height for the configuration.
// ConfigNone has no dimensions and returns ok=false.
func (c Configuration) Dimensions() (width, height int, ok bool) {
	switch c {
	case ConfigSmall:
		return 20, 15, true
	case ConfigLarge:
		return 40, 30, true
	}
	return 0, 0, false
}
