package mapgen

import (
	"testing"

	"github.com/talgya/hexfront/internal/hexmap"
	"github.com/talgya/hexfront/internal/mapfile"
)

func seededConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Name = "testworld"
	cfg.Seed = 42
	return cfg
}

func TestGenerateFullMap(t *testing.T) {
	m, err := Generate(seededConfig())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if m.TileCount() != m.Width*m.Height {
		t.Errorf("generated %d tiles, want %d", m.TileCount(), m.Width*m.Height)
	}

	for _, validate := range []func() (*hexmap.Report, error){
		m.ValidateIntegrity, m.ValidateDimensions, m.ValidateConnectivity,
	} {
		r, err := validate()
		if err != nil {
			t.Fatal(err)
		}
		if !r.OK() {
			t.Errorf("generated map failed validation: %v", r.Err())
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(seededConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(seededConfig())
	if err != nil {
		t.Fatal(err)
	}

	docA, err := mapfile.FromMap(a)
	if err != nil {
		t.Fatal(err)
	}
	docB, err := mapfile.FromMap(b)
	if err != nil {
		t.Fatal(err)
	}
	if docA.Header.Checksum != docB.Header.Checksum {
		t.Error("same seed should generate identical maps")
	}
}

func TestGenerateRiverEdgesSymmetric(t *testing.T) {
	m, err := Generate(seededConfig())
	if err != nil {
		t.Fatal(err)
	}
	tiles, err := m.Tiles()
	if err != nil {
		t.Fatal(err)
	}
	for _, tile := range tiles {
		for _, d := range hexmap.Directions {
			if !tile.Rivers.Get(d) {
				continue
			}
			nc := hexmap.NeighborOf(tile.Coord, d)
			if !m.InBounds(nc) {
				continue
			}
			neighbor, _ := m.Get(nc)
			if neighbor != nil && !neighbor.Rivers.Get(d.Opposite()) {
				t.Errorf("river edge %s at %s has no mirror on %s", d, tile.Coord, nc)
			}
		}
	}
}

func TestGenerateRoundTripsThroughFormat(t *testing.T) {
	m, err := Generate(seededConfig())
	if err != nil {
		t.Fatal(err)
	}
	doc, err := mapfile.FromMap(m)
	if err != nil {
		t.Fatal(err)
	}
	if !mapfile.Validate(doc) {
		t.Fatal("generated document should carry a valid checksum")
	}
	rebuilt, err := doc.BuildMap()
	if err != nil {
		t.Fatalf("BuildMap: %v", err)
	}
	if rebuilt.TileCount() != m.TileCount() {
		t.Errorf("rebuilt %d tiles, want %d", rebuilt.TileCount(), m.TileCount())
	}
}
