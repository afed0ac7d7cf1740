package mapfile

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talgya/hexfront/internal/hexmap"
)

// buildTestMap returns a fully populated 3x3 map with some feature
// variety: terrain, infrastructure, borders, labels.
func buildTestMap(t *testing.T) *hexmap.Map {
	t.Helper()
	m, err := hexmap.NewSized("verdun", hexmap.ConfigSmall, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	terrains := []hexmap.Terrain{
		hexmap.TerrainClear, hexmap.TerrainForest, hexmap.TerrainHills,
		hexmap.TerrainUrban, hexmap.TerrainSwamp, hexmap.TerrainClear,
		hexmap.TerrainSand, hexmap.TerrainMountain, hexmap.TerrainWater,
	}
	i := 0
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			tile := hexmap.NewTile(hexmap.Coord{X: x, Y: y})
			if err := tile.SetTerrain(terrains[i]); err != nil {
				t.Fatal(err)
			}
			i++
			if _, err := m.Set(tile); err != nil {
				t.Fatal(err)
			}
		}
	}
	center, _ := m.Get(hexmap.Coord{X: 1, Y: 1})
	center.Rail = true
	center.SetFort(true)
	center.Objective = true
	center.Label = "Verdun"
	center.VictoryValue = 12.5
	center.Rivers.Set(hexmap.East, true)
	center.Bridges.Set(hexmap.East, true)

	if err := m.BuildNeighborGraph(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestDocumentRoundTrip(t *testing.T) {
	m := buildTestMap(t)
	doc, err := FromMap(m)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Header.MapName != "verdun" || doc.Header.Version != FormatVersion {
		t.Errorf("header = %+v", doc.Header)
	}
	if !Validate(doc) {
		t.Fatal("fresh document should validate")
	}

	rebuilt, err := doc.BuildMap()
	if err != nil {
		t.Fatal(err)
	}
	if rebuilt.TileCount() != m.TileCount() {
		t.Fatalf("rebuilt map has %d tiles, want %d", rebuilt.TileCount(), m.TileCount())
	}

	center, _ := rebuilt.Get(hexmap.Coord{X: 1, Y: 1})
	if center.Terrain() != hexmap.TerrainSwamp {
		t.Errorf("center terrain = %s", center.Terrain())
	}
	if !center.Rail || !center.Fort() || !center.Objective {
		t.Error("center flags lost in round trip")
	}
	if center.Label != "Verdun" || center.VictoryValue != 12.5 {
		t.Error("center metadata lost in round trip")
	}
	if !center.Rivers.Get(hexmap.East) || !center.Bridges.Get(hexmap.East) {
		t.Error("center borders lost in round trip")
	}

	r, err := rebuilt.ValidateConnectivity()
	if err != nil {
		t.Fatal(err)
	}
	if !r.OK() {
		t.Errorf("rebuilt map connectivity: %v", r.Err())
	}
}

func TestChecksumDeterminism(t *testing.T) {
	m := buildTestMap(t)
	doc, err := FromMap(m)
	if err != nil {
		t.Fatal(err)
	}

	first, err := Compute(doc.Tiles)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Compute(doc.Tiles)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("digest not deterministic: %s vs %s", first, second)
	}
	if first != strings.ToLower(first) {
		t.Errorf("digest %q is not lowercase hex", first)
	}
	if len(first) != 64 {
		t.Errorf("digest length = %d, want 64", len(first))
	}
}

func TestChecksumChangesOnMutation(t *testing.T) {
	m := buildTestMap(t)
	doc, _ := FromMap(m)
	base, _ := Compute(doc.Tiles)

	mutations := []func(d *Document){
		func(d *Document) { d.Tiles[0].IsRoad = true },
		func(d *Document) { d.Tiles[3].VictoryValue += 0.5 },
		func(d *Document) { d.Tiles[8].RiverBorders = "100000" },
		func(d *Document) { d.Tiles[5].TileLabel = "x" },
	}
	for i, mutate := range mutations {
		fresh, _ := FromMap(m)
		mutate(fresh)
		sum, err := Compute(fresh.Tiles)
		if err != nil {
			t.Fatal(err)
		}
		if sum == base {
			t.Errorf("mutation %d did not change the digest", i)
		}
	}
}

func TestValidateStaleChecksum(t *testing.T) {
	m := buildTestMap(t)
	doc, _ := FromMap(m)

	// Mutate tiles after the checksum was stamped.
	doc.Tiles[0].IsObjective = true
	if Validate(doc) {
		t.Error("mutated document should fail validation")
	}

	if err := UpdateChecksum(doc); err != nil {
		t.Fatal(err)
	}
	if !Validate(doc) {
		t.Error("document should validate after UpdateChecksum")
	}
}

func TestValidateMissingFields(t *testing.T) {
	if Validate(nil) {
		t.Error("nil document should fail validation")
	}
	if Validate(&Document{Header: Header{Checksum: "ab"}}) {
		t.Error("document without tiles should fail validation")
	}
	if Validate(&Document{Tiles: []TileRecord{}}) {
		t.Error("document without checksum should fail validation")
	}
}

func TestValidateChecksumCaseInsensitive(t *testing.T) {
	m := buildTestMap(t)
	doc, _ := FromMap(m)
	doc.Header.Checksum = strings.ToUpper(doc.Header.Checksum)
	if !Validate(doc) {
		t.Error("uppercase stored digest should still validate")
	}
}

func TestHeaderValidate(t *testing.T) {
	good := Header{
		MapName:       "verdun",
		Configuration: "small",
		Version:       2,
		Checksum:      "abc",
		CreatedAt:     time.Now(),
	}
	if err := good.Validate(); err != nil {
		t.Errorf("good header failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(h *Header)
	}{
		{"empty name", func(h *Header) { h.MapName = "" }},
		{"bad configuration", func(h *Header) { h.Configuration = "gigantic" }},
		{"zero version", func(h *Header) { h.Version = 0 }},
		{"negative version", func(h *Header) { h.Version = -3 }},
		{"no checksum", func(h *Header) { h.Checksum = "" }},
	}
	for _, tc := range tests {
		h := good
		tc.mutate(&h)
		if err := h.Validate(); err == nil {
			t.Errorf("%s: header should fail validation", tc.name)
		}
	}
}

func TestBuildMapRejectsBadRecords(t *testing.T) {
	m := buildTestMap(t)

	tests := []struct {
		name   string
		mutate func(d *Document)
	}{
		{"unknown terrain", func(d *Document) { d.Tiles[0].Terrain = "lava" }},
		{"cost mismatch", func(d *Document) { d.Tiles[0].MovementCost = 9 }},
		{"fort and airbase", func(d *Document) { d.Tiles[0].IsFort = true; d.Tiles[0].IsAirbase = true }},
		{"bad border string", func(d *Document) { d.Tiles[0].RiverBorders = "11" }},
		{"out of bounds", func(d *Document) {
			d.Tiles[0].Position = hexmap.Coord{X: 100, Y: 100}
		}},
	}
	for _, tc := range tests {
		doc, _ := FromMap(m)
		tc.mutate(doc)
		if _, err := doc.BuildMap(); err == nil {
			t.Errorf("%s: BuildMap should fail", tc.name)
		}
	}
}

func TestWriteReadLoad(t *testing.T) {
	m := buildTestMap(t)
	doc, _ := FromMap(m)
	path := filepath.Join(t.TempDir(), "verdun.map.json")

	if err := WriteFile(path, doc); err != nil {
		t.Fatal(err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Header.Checksum != doc.Header.Checksum {
		t.Error("checksum changed across write/read")
	}
	if len(back.Tiles) != len(doc.Tiles) {
		t.Errorf("tile count changed: %d vs %d", len(back.Tiles), len(doc.Tiles))
	}

	loaded, loadedDoc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.TileCount() != m.TileCount() {
		t.Errorf("loaded map has %d tiles", loaded.TileCount())
	}
	if loadedDoc.Header.MapName != "verdun" {
		t.Errorf("loaded header name = %q", loadedDoc.Header.MapName)
	}
}

func TestLoadRejectsTamperedFile(t *testing.T) {
	m := buildTestMap(t)
	doc, _ := FromMap(m)
	doc.Tiles[2].IsVisible = true // mutate after checksum stamp

	path := filepath.Join(t.TempDir(), "tampered.map.json")
	if err := WriteFile(path, doc); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err == nil {
		t.Error("Load should reject a document with a stale checksum")
	}
}
