// Package mapfile implements the versioned, checksummed persistence
// format for hex maps: the on-disk JSON document, the checksum service
// over its canonical tile encoding, and a SQLite-backed archive.
package mapfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/talgya/hexfront/internal/hexmap"
)

// FormatVersion is the current persisted-format version. Version 1 was
// the legacy binary graph, readable only through the legacy migrator.
const FormatVersion = 2

var (
	ErrNilDocument = errors.New("mapfile: nil document")
	ErrNoTiles     = errors.New("mapfile: document has no tile array")
)

// Header carries the content metadata of a persisted map. Apart from the
// checksum, which changes through UpdateChecksum, header fields are fixed
// at creation.
type Header struct {
	MapName       string    `json:"mapName"`
	Configuration string    `json:"configuration"`
	Version       int       `json:"version"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Config parses the header's configuration tag.
func (h *Header) Config() (hexmap.Configuration, error) {
	return hexmap.ParseConfiguration(h.Configuration)
}

// Validate checks the header fields: non-empty name, a recognized
// configuration tag, a positive version, and a checksum present. All
// problems found are reported together.
func (h *Header) Validate() error {
	var err error
	if h.MapName == "" {
		err = multierr.Append(err, errors.New("mapfile: header has empty map name"))
	}
	if _, perr := h.Config(); perr != nil {
		err = multierr.Append(err, perr)
	}
	if h.Version <= 0 {
		err = multierr.Append(err, fmt.Errorf("mapfile: header version %d is not positive", h.Version))
	}
	if h.Checksum == "" {
		err = multierr.Append(err, errors.New("mapfile: header has no checksum"))
	}
	return err
}

// TileRecord is the persisted form of a single tile. Field order is part
// of the canonical checksum encoding and must not be reordered.
type TileRecord struct {
	Position         hexmap.Coord       `json:"position"`
	Terrain          string             `json:"terrain"`
	MovementCost     int                `json:"movementCost"`
	IsRail           bool               `json:"isRail"`
	IsRoad           bool               `json:"isRoad"`
	IsFort           bool               `json:"isFort"`
	IsAirbase        bool               `json:"isAirbase"`
	IsObjective      bool               `json:"isObjective"`
	IsVisible        bool               `json:"isVisible"`
	TileControl      hexmap.Control     `json:"tileControl"`
	DefaultControl   hexmap.Control     `json:"defaultTileControl"`
	TileLabel        string             `json:"tileLabel"`
	LargeTileLabel   string             `json:"largeTileLabel"`
	LabelSize        hexmap.LabelSize   `json:"labelSize"`
	LabelWeight      hexmap.LabelWeight `json:"labelWeight"`
	LabelColor       hexmap.LabelColor  `json:"labelColor"`
	LabelOutline     float64            `json:"labelOutlineThickness"`
	VictoryValue     float64            `json:"victoryValue"`
	AirbaseDamage    float64            `json:"airbaseDamage"`
	UrbanDamage      int                `json:"urbanDamage"`
	RiverBorders     string             `json:"riverBorders"`
	BridgeBorders    string             `json:"bridgeBorders"`
	PontoonBorders   string             `json:"pontoonBridgeBorders"`
	DestroyedBorders string             `json:"damagedBridgeBorders"`
}

// Document is the persisted format: header plus the ordered tile array.
type Document struct {
	Header Header       `json:"header"`
	Tiles  []TileRecord `json:"tiles"`
}

// recordFromTile flattens a tile into its persisted form. Border strings
// are always written in canonical bit order.
func recordFromTile(t *hexmap.Tile) TileRecord {
	return TileRecord{
		Position:         t.Coord,
		Terrain:          t.Terrain().String(),
		MovementCost:     t.MovementCost(),
		IsRail:           t.Rail,
		IsRoad:           t.Road,
		IsFort:           t.Fort(),
		IsAirbase:        t.Airbase(),
		IsObjective:      t.Objective,
		IsVisible:        t.Visible,
		TileControl:      t.Control,
		DefaultControl:   t.DefaultControl,
		TileLabel:        t.Label,
		LargeTileLabel:   t.LargeLabel,
		LabelSize:        t.LabelSize,
		LabelWeight:      t.LabelWeight,
		LabelColor:       t.LabelColor,
		LabelOutline:     t.LabelOutline,
		VictoryValue:     t.VictoryValue,
		AirbaseDamage:    t.AirbaseDamage,
		UrbanDamage:      t.UrbanDamage,
		RiverBorders:     t.Rivers.String(hexmap.OrderCanonical),
		BridgeBorders:    t.Bridges.String(hexmap.OrderCanonical),
		PontoonBorders:   t.PontoonBridges.String(hexmap.OrderCanonical),
		DestroyedBorders: t.DestroyedBridges.String(hexmap.OrderCanonical),
	}
}

// tileFromRecord rebuilds a tile from its persisted form. Inconsistent
// records (unknown terrain, cost not matching the terrain table, fort and
// airbase both set, malformed border strings) are rejected, never
// repaired.
func tileFromRecord(rec TileRecord) (*hexmap.Tile, error) {
	terrain, err := hexmap.ParseTerrain(rec.Terrain)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", rec.Position, err)
	}
	if rec.MovementCost != terrain.MovementCost() {
		return nil, fmt.Errorf("tile %s: movement cost %d does not match terrain %s",
			rec.Position, rec.MovementCost, terrain)
	}
	if rec.IsFort && rec.IsAirbase {
		return nil, fmt.Errorf("tile %s: fort and airbase are mutually exclusive", rec.Position)
	}

	t := hexmap.NewTile(rec.Position)
	if err := t.SetTerrain(terrain); err != nil {
		return nil, fmt.Errorf("tile %s: %w", rec.Position, err)
	}
	t.SetFort(rec.IsFort)
	t.SetAirbase(rec.IsAirbase)
	t.Rail = rec.IsRail
	t.Road = rec.IsRoad
	t.Objective = rec.IsObjective
	t.Visible = rec.IsVisible
	t.Control = rec.TileControl
	t.DefaultControl = rec.DefaultControl
	t.Label = rec.TileLabel
	t.LargeLabel = rec.LargeTileLabel
	t.LabelSize = rec.LabelSize
	t.LabelWeight = rec.LabelWeight
	t.LabelColor = rec.LabelColor
	t.LabelOutline = rec.LabelOutline
	t.VictoryValue = rec.VictoryValue
	t.AirbaseDamage = rec.AirbaseDamage
	t.UrbanDamage = rec.UrbanDamage

	borders := []struct {
		value    string
		category hexmap.BorderCategory
		dst      *hexmap.BorderSet
	}{
		{rec.RiverBorders, hexmap.BorderRiver, &t.Rivers},
		{rec.BridgeBorders, hexmap.BorderBridge, &t.Bridges},
		{rec.PontoonBorders, hexmap.BorderPontoonBridge, &t.PontoonBridges},
		{rec.DestroyedBorders, hexmap.BorderDestroyedBridge, &t.DestroyedBridges},
	}
	for _, b := range borders {
		set, err := hexmap.ParseBorderSet(b.value, hexmap.OrderCanonical, b.category)
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", rec.Position, err)
		}
		*b.dst = set
	}
	return t, nil
}

// FromMap snapshots a map into a new document, stamping the checksum.
func FromMap(m *hexmap.Map) (*Document, error) {
	tiles, err := m.Tiles()
	if err != nil {
		return nil, err
	}
	doc := &Document{
		Header: Header{
			MapName:       m.Name,
			Configuration: m.Config.String(),
			Version:       FormatVersion,
			CreatedAt:     time.Now().UTC(),
		},
		Tiles: make([]TileRecord, 0, len(tiles)),
	}
	for _, t := range tiles {
		doc.Tiles = append(doc.Tiles, recordFromTile(t))
	}
	if err := UpdateChecksum(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// BuildMap deserializes the document into a map and builds its neighbor
// graph. Structural validation is the caller's follow-up step.
func (d *Document) BuildMap() (*hexmap.Map, error) {
	config, err := d.Header.Config()
	if err != nil {
		return nil, err
	}
	m, err := hexmap.New(d.Header.MapName, config)
	if err != nil {
		return nil, err
	}
	for _, rec := range d.Tiles {
		t, err := tileFromRecord(rec)
		if err != nil {
			return nil, err
		}
		ok, err := m.Set(t)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("mapfile: tile %s lies outside the %s map", t.Coord, config)
		}
	}
	if err := m.BuildNeighborGraph(); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteFile writes the document to disk as indented JSON. The checksum
// covers only the compact encoding of the tile array, so the on-disk
// formatting is free to be readable.
func WriteFile(path string, d *Document) error {
	if d == nil {
		return ErrNilDocument
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// ReadFile reads a persisted document from disk.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &d, nil
}

// Load reads a document from disk, verifies its header and checksum, and
// builds a fully linked, validated map. No structurally inconsistent map
// is ever returned.
func Load(path string) (*hexmap.Map, *Document, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if err := doc.Header.Validate(); err != nil {
		return nil, nil, err
	}
	if !Validate(doc) {
		return nil, nil, fmt.Errorf("mapfile: checksum mismatch for %q", doc.Header.MapName)
	}
	m, err := doc.BuildMap()
	if err != nil {
		return nil, nil, err
	}
	for name, validate := range map[string]func() (*hexmap.Report, error){
		"integrity":    m.ValidateIntegrity,
		"dimensions":   m.ValidateDimensions,
		"connectivity": m.ValidateConnectivity,
	} {
		r, err := validate()
		if err != nil {
			return nil, nil, err
		}
		if !r.OK() {
			return nil, nil, fmt.Errorf("mapfile: %s validation failed: %w", name, r.Err())
		}
	}
	return m, doc, nil
}
