// Package mapgen builds complete hex maps from layered simplex noise:
// elevation and moisture fields are sampled per cell, terrain is derived
// from them, and rivers are traced downhill along tile edges.
package mapgen

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexfront/internal/hexmap"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Name          string
	Configuration hexmap.Configuration
	Seed          int64   // Random seed (0 = random)
	WaterLevel    float64 // Elevation threshold for water (0.0–1.0)
	MountainLevel float64 // Elevation threshold for mountains (0.0–1.0)
	Rivers        int     // Number of rivers to trace
	Towns         int     // Number of urban tiles to place
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Name:          "generated",
		Configuration: hexmap.ConfigSmall,
		Seed:          0,
		WaterLevel:    0.22,
		MountainLevel: 0.78,
		Rivers:        3,
		Towns:         4,
	}
}

// Generate creates a fully populated, linked map. Identical configs with
// a nonzero seed produce identical maps.
func Generate(cfg GenConfig) (*hexmap.Map, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	m, err := hexmap.New(cfg.Name, cfg.Configuration)
	if err != nil {
		return nil, err
	}

	// Two noise generators for independent layers.
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	elevation := make(map[hexmap.Coord]float64, m.Width*m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			coord := hexmap.Coord{X: x, Y: y}

			// Offset coords -> continuous space; odd rows shift half a hex.
			fx := float64(x) + 0.5*float64(y&1)
			fy := float64(y) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, fx, fy, 4, 0.12, 0.5)
			moist := octaveNoise(moistNoise, fx, fy, 3, 0.09, 0.5)
			elevation[coord] = elev

			tile := hexmap.NewTile(coord)
			if err := tile.SetTerrain(deriveTerrain(elev, moist, cfg)); err != nil {
				return nil, err
			}
			ok, err := m.Set(tile)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("mapgen: tile %s outside %s bounds", coord, cfg.Configuration)
			}
		}
	}

	rng := rand.New(rand.NewSource(seed + 2))
	placeTowns(m, rng, cfg.Towns)
	traceRivers(m, elevation, rng, cfg.Rivers)
	placeRoads(m)

	if err := m.BuildNeighborGraph(); err != nil {
		return nil, err
	}
	return m, nil
}

// octaveNoise samples multi-octave 2D noise normalized to [0,1].
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, freq, persistence float64) float64 {
	var total, amplitude, maxValue float64
	amplitude = 1.0
	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2.0
	}
	return total / maxValue
}

// deriveTerrain determines terrain type from elevation and moisture.
func deriveTerrain(elev, moist float64, cfg GenConfig) hexmap.Terrain {
	switch {
	case elev < cfg.WaterLevel:
		return hexmap.TerrainWater
	case elev > cfg.MountainLevel:
		return hexmap.TerrainMountain
	case elev > cfg.MountainLevel-0.15:
		return hexmap.TerrainHills
	case moist > 0.72 && elev < 0.4:
		return hexmap.TerrainSwamp
	case moist > 0.55:
		return hexmap.TerrainForest
	case moist < 0.25:
		return hexmap.TerrainSand
	}
	return hexmap.TerrainClear
}

// placeTowns converts a handful of clear tiles to urban objectives.
func placeTowns(m *hexmap.Map, rng *rand.Rand, count int) {
	for placed := 0; placed < count; {
		c := hexmap.Coord{X: rng.Intn(m.Width), Y: rng.Intn(m.Height)}
		tile, err := m.Get(c)
		if err != nil || tile == nil || tile.Terrain() != hexmap.TerrainClear {
			placed++ // give up on this slot rather than looping forever
			continue
		}
		tile.SetTerrain(hexmap.TerrainUrban)
		tile.Objective = true
		tile.Label = fmt.Sprintf("Town %d", placed+1)
		tile.VictoryValue = 5
		placed++
	}
}

// traceRivers walks downhill from high ground, marking the shared edge of
// each step on both adjacent tiles.
func traceRivers(m *hexmap.Map, elevation map[hexmap.Coord]float64, rng *rand.Rand, count int) {
	for i := 0; i < count; i++ {
		c := hexmap.Coord{X: rng.Intn(m.Width), Y: rng.Intn(m.Height)}
		// Bias the source uphill: take the highest of a few probes.
		for probe := 0; probe < 8; probe++ {
			p := hexmap.Coord{X: rng.Intn(m.Width), Y: rng.Intn(m.Height)}
			if elevation[p] > elevation[c] {
				c = p
			}
		}

		for step := 0; step < m.Width+m.Height; step++ {
			tile, err := m.Get(c)
			if err != nil || tile == nil || tile.Terrain() == hexmap.TerrainWater {
				break
			}

			// Steepest descent among the six neighbors.
			bestDir := hexmap.Direction(0)
			bestCoord := c
			found := false
			for _, d := range hexmap.Directions {
				nc := hexmap.NeighborOf(c, d)
				if !m.InBounds(nc) {
					continue
				}
				if !found || elevation[nc] < elevation[bestCoord] {
					bestDir, bestCoord, found = d, nc, true
				}
			}
			if !found || elevation[bestCoord] >= elevation[c] {
				break // local minimum, river ends
			}

			tile.Rivers.Set(bestDir, true)
			if neighbor, err := m.Get(bestCoord); err == nil && neighbor != nil {
				neighbor.Rivers.Set(bestDir.Opposite(), true)
			}
			c = bestCoord
		}
	}
}

// placeRoads lays a west-east road across the middle row and a rail line
// down the middle column, bridging any river edge they cross.
func placeRoads(m *hexmap.Map) {
	roadY := m.Height / 2
	for x := 0; x < m.Width; x++ {
		tile, err := m.Get(hexmap.Coord{X: x, Y: roadY})
		if err != nil || tile == nil || tile.Terrain() == hexmap.TerrainWater {
			continue
		}
		tile.Road = true
		bridgeEdge(m, tile, hexmap.East)
	}

	railX := m.Width / 2
	for y := 0; y < m.Height; y++ {
		tile, err := m.Get(hexmap.Coord{X: railX, Y: y})
		if err != nil || tile == nil || tile.Terrain() == hexmap.TerrainWater {
			continue
		}
		tile.Rail = true
		bridgeEdge(m, tile, hexmap.SouthEast)
	}
}

// bridgeEdge marks a bridge on the tile's edge in direction d when a
// river crosses it, on both sides of the edge.
func bridgeEdge(m *hexmap.Map, tile *hexmap.Tile, d hexmap.Direction) {
	if !tile.Rivers.Get(d) {
		return
	}
	tile.Bridges.Set(d, true)
	if neighbor, err := m.Get(hexmap.NeighborOf(tile.Coord, d)); err == nil && neighbor != nil {
		neighbor.Bridges.Set(d.Opposite(), true)
	}
}
