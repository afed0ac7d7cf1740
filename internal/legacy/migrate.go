package legacy

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/talgya/hexfront/internal/hexmap"
	"github.com/talgya/hexfront/internal/mapfile"
)

// Options controls a migration run. BorderOrder states the bit order of
// the border strings in the input files; it is never inferred from
// content. Configuration, when not ConfigNone, overrides the
// configuration tag recorded in each legacy file.
type Options struct {
	BorderOrder   hexmap.BitOrder
	Configuration hexmap.Configuration
}

// Migrator converts legacy binary maps into the current persisted
// format: decode, validate, transform, stamp a checksum, emit.
type Migrator struct {
	opts Options
}

// NewMigrator creates a migrator with the given options.
func NewMigrator(opts Options) (*Migrator, error) {
	if !opts.BorderOrder.Valid() {
		return nil, fmt.Errorf("legacy: invalid border order %d", opts.BorderOrder)
	}
	return &Migrator{opts: opts}, nil
}

// validate is the migrator's second stage: header fields must be
// non-empty and positive, every record must be internally sound, and no
// two records may share an (x,y) position. All violations are collected
// and reported together; any violation blocks the whole file.
func (mg *Migrator) validate(f *File, config hexmap.Configuration) error {
	var err error
	if f.Name == "" {
		err = multierr.Append(err, fmt.Errorf("legacy: empty map name"))
	}
	if f.Version <= 0 {
		err = multierr.Append(err, fmt.Errorf("legacy: version %d is not positive", f.Version))
	}
	if len(f.Tiles) == 0 {
		err = multierr.Append(err, fmt.Errorf("legacy: no tile records"))
	}

	width, height, ok := config.Dimensions()
	if !ok {
		err = multierr.Append(err, fmt.Errorf("legacy: configuration tag %d has no dimensions", f.Configuration))
	}

	seen := make(map[hexmap.Coord]bool, len(f.Tiles))
	for i, rec := range f.Tiles {
		pos := hexmap.Coord{X: int(rec.X), Y: int(rec.Y)}
		if seen[pos] {
			err = multierr.Append(err, fmt.Errorf("legacy: duplicate position %s at record %d", pos, i))
		}
		seen[pos] = true

		if pos.X < 0 || pos.Y < 0 {
			err = multierr.Append(err, fmt.Errorf("legacy: record %d has negative position %s", i, pos))
		} else if ok && (pos.X >= width || pos.Y >= height) {
			err = multierr.Append(err, fmt.Errorf("legacy: record %d at %s lies outside %dx%d", i, pos, width, height))
		}
		if !hexmap.Terrain(rec.Terrain).Valid() {
			err = multierr.Append(err, fmt.Errorf("legacy: record %d at %s has unknown terrain %d", i, pos, rec.Terrain))
		}
		if rec.Flags&flagFort != 0 && rec.Flags&flagAirbase != 0 {
			err = multierr.Append(err, fmt.Errorf("legacy: record %d at %s sets both fort and airbase", i, pos))
		}
	}
	return err
}

// transform maps one legacy record into the new tile representation.
// Border strings are reinterpreted from the stated legacy bit order into
// canonical order; movement cost is rederived from the terrain table.
func (mg *Migrator) transform(rec Record) (mapfile.TileRecord, error) {
	terrain := hexmap.Terrain(rec.Terrain)
	if int(rec.MovementCost) != terrain.MovementCost() {
		slog.Warn("legacy movement cost differs from terrain table, rederiving",
			"x", rec.X, "y", rec.Y, "stored", rec.MovementCost, "derived", terrain.MovementCost())
	}

	out := mapfile.TileRecord{
		Position:       hexmap.Coord{X: int(rec.X), Y: int(rec.Y)},
		Terrain:        terrain.String(),
		MovementCost:   terrain.MovementCost(),
		IsRail:         rec.Flags&flagRail != 0,
		IsRoad:         rec.Flags&flagRoad != 0,
		IsFort:         rec.Flags&flagFort != 0,
		IsAirbase:      rec.Flags&flagAirbase != 0,
		IsObjective:    rec.Flags&flagObjective != 0,
		IsVisible:      rec.Flags&flagVisible != 0,
		TileControl:    hexmap.Control(rec.Control),
		DefaultControl: hexmap.Control(rec.DefaultControl),
		TileLabel:      rec.Label,
		LargeTileLabel: rec.LargeLabel,
		LabelSize:      hexmap.LabelSize(rec.LabelSize),
		LabelWeight:    hexmap.LabelWeight(rec.LabelWeight),
		LabelColor:     hexmap.LabelColor(rec.LabelColor),
		LabelOutline:   float64(rec.Outline),
		VictoryValue:   float64(rec.Victory),
		AirbaseDamage:  float64(rec.AirbaseDamage),
		UrbanDamage:    int(rec.UrbanDamage),
	}

	borders := []struct {
		value string
		dst   *string
	}{
		{rec.Rivers, &out.RiverBorders},
		{rec.Bridges, &out.BridgeBorders},
		{rec.Pontoons, &out.PontoonBorders},
		{rec.Damaged, &out.DestroyedBorders},
	}
	for _, b := range borders {
		canonical, err := hexmap.ConvertOrder(b.value, mg.opts.BorderOrder, hexmap.OrderCanonical)
		if err != nil {
			return mapfile.TileRecord{}, fmt.Errorf("legacy: tile %s: %w", out.Position, err)
		}
		*b.dst = canonical
	}
	return out, nil
}

// Migrate runs the full pipeline over one legacy stream and returns the
// checksummed document. Nothing is emitted for an invalid input.
func (mg *Migrator) Migrate(src io.Reader) (*mapfile.Document, error) {
	f, err := Decode(src)
	if err != nil {
		return nil, err
	}

	config := mg.opts.Configuration
	if config == hexmap.ConfigNone {
		config = hexmap.Configuration(f.Configuration)
	}
	if err := mg.validate(f, config); err != nil {
		return nil, fmt.Errorf("legacy: %q failed validation: %w", f.Name, err)
	}

	doc := &mapfile.Document{
		Header: mapfile.Header{
			MapName:       f.Name,
			Configuration: config.String(),
			Version:       mapfile.FormatVersion,
			CreatedAt:     time.Now().UTC(),
		},
		Tiles: make([]mapfile.TileRecord, 0, len(f.Tiles)),
	}
	for _, rec := range f.Tiles {
		out, err := mg.transform(rec)
		if err != nil {
			return nil, err
		}
		doc.Tiles = append(doc.Tiles, out)
	}
	if err := mapfile.UpdateChecksum(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FileResult records the outcome of migrating a single file.
type FileResult struct {
	Input       string
	Output      string
	InputBytes  int64
	OutputBytes int64
	Tiles       int
	Err         error
}

// MigrateFile migrates one legacy file on disk, writing the new document
// to outPath. The input file is never modified.
func (mg *Migrator) MigrateFile(inPath, outPath string) FileResult {
	res := FileResult{Input: inPath, Output: outPath}

	in, err := os.Open(inPath)
	if err != nil {
		res.Err = err
		return res
	}
	defer in.Close()
	if info, err := in.Stat(); err == nil {
		res.InputBytes = info.Size()
	}

	doc, err := mg.Migrate(in)
	if err != nil {
		res.Err = err
		return res
	}
	res.Tiles = len(doc.Tiles)

	if err := mapfile.WriteFile(outPath, doc); err != nil {
		res.Err = err
		return res
	}
	if info, err := os.Stat(outPath); err == nil {
		res.OutputBytes = info.Size()
	}
	return res
}

// BatchConfig describes a directory migration job, typically loaded
// from a YAML file.
type BatchConfig struct {
	InputDir      string `yaml:"input_dir"`
	Pattern       string `yaml:"pattern"`
	OutputDir     string `yaml:"output_dir"`
	BorderOrder   string `yaml:"border_order"`
	Configuration string `yaml:"configuration"`
}

// LoadBatchConfig reads a batch job description from a YAML file.
func LoadBatchConfig(path string) (*BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch config: %w", err)
	}
	cfg := &BatchConfig{Pattern: "*.hgb"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse batch config: %w", err)
	}
	if cfg.InputDir == "" || cfg.OutputDir == "" {
		return nil, fmt.Errorf("legacy: batch config needs input_dir and output_dir")
	}
	return cfg, nil
}

// Migrator builds migration options from the batch config fields.
func (c *BatchConfig) Migrator() (*Migrator, error) {
	opts := Options{}
	switch c.BorderOrder {
	case "", "legacy":
		opts.BorderOrder = hexmap.OrderLegacy
	case "canonical":
		opts.BorderOrder = hexmap.OrderCanonical
	default:
		return nil, fmt.Errorf("legacy: unknown border order %q", c.BorderOrder)
	}
	if c.Configuration != "" {
		config, err := hexmap.ParseConfiguration(c.Configuration)
		if err != nil {
			return nil, err
		}
		opts.Configuration = config
	}
	return NewMigrator(opts)
}

// BatchReport summarizes a directory migration run. It is informational
// output for the operator, not part of the data model.
type BatchReport struct {
	RunID   string
	Started time.Time
	Files   []FileResult
}

// Attempted returns the number of files processed.
func (r *BatchReport) Attempted() int {
	return len(r.Files)
}

// Succeeded returns the number of files migrated without error.
func (r *BatchReport) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// String renders the human-readable conversion report.
func (r *BatchReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "migration run %s (%s)\n", r.RunID, r.Started.Format(time.RFC3339))
	fmt.Fprintf(&b, "files attempted: %d, succeeded: %d\n", r.Attempted(), r.Succeeded())
	for _, f := range r.Files {
		if f.Err != nil {
			fmt.Fprintf(&b, "  FAIL %s: %v\n", f.Input, f.Err)
			continue
		}
		fmt.Fprintf(&b, "  ok   %s (%s) -> %s (%s), %d tiles\n",
			f.Input, humanize.Bytes(uint64(f.InputBytes)),
			f.Output, humanize.Bytes(uint64(f.OutputBytes)), f.Tiles)
	}
	return b.String()
}

// MigrateDir applies the full pipeline to every file in the input
// directory matching the pattern and writes the new documents to the
// output directory. Per-file failures are recorded in the report and do
// not abort the rest of the batch.
func (mg *Migrator) MigrateDir(cfg *BatchConfig) (*BatchReport, error) {
	matches, err := filepath.Glob(filepath.Join(cfg.InputDir, cfg.Pattern))
	if err != nil {
		return nil, fmt.Errorf("legacy: bad pattern %q: %w", cfg.Pattern, err)
	}
	sort.Strings(matches)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("legacy: create output dir: %w", err)
	}

	report := &BatchReport{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
	}
	for _, inPath := range matches {
		base := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
		outPath := filepath.Join(cfg.OutputDir, base+".map.json")

		res := mg.MigrateFile(inPath, outPath)
		if res.Err != nil {
			slog.Error("migration failed", "file", inPath, "error", res.Err)
		} else {
			slog.Info("migrated", "file", inPath, "tiles", res.Tiles,
				"bytes", humanize.Bytes(uint64(res.OutputBytes)))
		}
		report.Files = append(report.Files, res)
	}
	return report, nil
}
