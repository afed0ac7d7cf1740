package hexmap

import (
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"
)

// Contract-violation errors. These indicate caller bugs, not data
// conditions, and are meant to propagate.
var (
	ErrNilTile              = errors.New("hexmap: nil tile")
	ErrNotInitialized       = errors.New("hexmap: map not initialized")
	ErrDisposed             = errors.New("hexmap: map disposed")
	ErrUnknownConfiguration = errors.New("hexmap: configuration has no dimensions")
	ErrBadDimensions        = errors.New("hexmap: width and height must be positive")
)

type mapState uint8

const (
	stateUninitialized mapState = iota
	stateInitialized
	stateDisposed
)

// Map is the authoritative container of all tiles, keyed by coordinate.
// It owns bounds enforcement, the derived neighbor graph, and the three
// structural consistency checks.
//
// Lifecycle: Uninitialized -> Initialized -> Disposed (terminal). Every
// operation except Dispose itself requires the Initialized state. A Map
// is not safe for concurrent use; BuildNeighborGraph in particular is a
// full-structure rewrite assuming exclusive access.
type Map struct {
	Name   string
	Config Configuration
	Width  int
	Height int

	tiles map[Coord]*Tile
	order []Coord
	state mapState
}

// New creates an empty, initialized map with the fixed dimensions of the
// given configuration.
func New(name string, config Configuration) (*Map, error) {
	w, h, ok := config.Dimensions()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConfiguration, config)
	}
	return NewSized(name, config, w, h)
}

// NewSized creates an empty, initialized map with explicit dimensions.
func NewSized(name string, config Configuration, width, height int) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, width, height)
	}
	return &Map{
		Name:   name,
		Config: config,
		Width:  width,
		Height: height,
		tiles:  make(map[Coord]*Tile),
		state:  stateInitialized,
	}, nil
}

// ready guards all operations that require the Initialized state.
func (m *Map) ready() error {
	switch m.state {
	case stateInitialized:
		return nil
	case stateDisposed:
		return ErrDisposed
	}
	return ErrNotInitialized
}

// InBounds reports whether the coordinate lies inside the configured
// rectangle [0,width) x [0,height).
func (m *Map) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < m.Width && c.Y >= 0 && c.Y < m.Height
}

// Get returns the tile at the given coordinate, or nil for both
// out-of-bounds and in-bounds-but-absent coordinates.
func (m *Map) Get(c Coord) (*Tile, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	return m.tiles[c], nil
}

// Set inserts or overwrites a tile at its own coordinate. Tiles outside
// the configured bounds are rejected with a false return; a nil tile is
// a contract violation.
func (m *Map) Set(t *Tile) (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}
	if t == nil {
		return false, ErrNilTile
	}
	if !m.InBounds(t.Coord) {
		return false, nil
	}
	if _, exists := m.tiles[t.Coord]; !exists {
		m.order = append(m.order, t.Coord)
	}
	m.tiles[t.Coord] = t
	return true, nil
}

// Remove deletes the tile at the given coordinate, reporting whether a
// tile was present. The neighbor graph is stale afterwards; rebuild it
// before relying on adjacency.
func (m *Map) Remove(c Coord) (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}
	if _, exists := m.tiles[c]; !exists {
		return false, nil
	}
	delete(m.tiles, c)
	for i, oc := range m.order {
		if oc == c {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// TileCount returns the number of tiles currently in the map.
func (m *Map) TileCount() int {
	return len(m.tiles)
}

// Tiles returns all tiles in insertion order. The slice is a fresh
// snapshot; iterating it is restartable and unaffected by later mutation.
func (m *Map) Tiles() ([]*Tile, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	out := make([]*Tile, 0, len(m.order))
	for _, c := range m.order {
		out = append(out, m.tiles[c])
	}
	return out, nil
}

// BuildNeighborGraph recomputes every tile's neighbor cache from scratch:
// for each tile and direction, the expected neighbor coordinate is
// derived via NeighborOf and linked if a tile resides there. This is a
// full O(tiles x 6) rebuild, not an incremental relink.
func (m *Map) BuildNeighborGraph() error {
	if err := m.ready(); err != nil {
		return err
	}
	for _, t := range m.tiles {
		t.ClearNeighbors()
	}
	for _, t := range m.tiles {
		for _, d := range Directions {
			if n, ok := m.tiles[NeighborOf(t.Coord, d)]; ok {
				t.SetNeighbor(d, n)
			}
		}
	}
	return nil
}

// Dispose releases all tiles and moves the map to its terminal state.
// Disposing twice is a no-op; disposing a map that was never initialized
// is a contract violation.
func (m *Map) Dispose() error {
	switch m.state {
	case stateDisposed:
		return nil
	case stateUninitialized:
		return ErrNotInitialized
	}
	for _, t := range m.tiles {
		t.ClearNeighbors()
	}
	m.tiles = nil
	m.order = nil
	m.state = stateDisposed
	return nil
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%q, %s, %dx%d, tiles=%d)", m.Name, m.Config, m.Width, m.Height, len(m.tiles))
}

// Report accumulates the outcome of a structural validation pass. Every
// distinct violation found is collected rather than stopping at the
// first; warnings cover conditions that are legal but worth surfacing.
type Report struct {
	err      error
	Warnings []string
}

func (r *Report) fail(format string, args ...any) {
	r.err = multierr.Append(r.err, fmt.Errorf(format, args...))
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// OK reports whether the validation pass found no violations.
func (r *Report) OK() bool {
	return r.err == nil
}

// Err returns the combined violation error, or nil.
func (r *Report) Err() error {
	return r.err
}

// Violations returns the individual violations found.
func (r *Report) Violations() []error {
	return multierr.Errors(r.err)
}

// ValidateIntegrity checks the container itself: positive dimensions, no
// nil tiles, every tile internally valid, every dictionary key matching
// its tile's own coordinate, and no coordinate stored twice.
func (m *Map) ValidateIntegrity() (*Report, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	r := &Report{}
	if m.Width <= 0 || m.Height <= 0 {
		r.fail("non-positive dimensions %dx%d", m.Width, m.Height)
	}
	seen := make(map[Coord]bool, len(m.order))
	for _, key := range m.order {
		if seen[key] {
			r.fail("coordinate %s stored twice", key)
			continue
		}
		seen[key] = true
		t, exists := m.tiles[key]
		if !exists || t == nil {
			r.fail("tile at %s is absent or nil", key)
			continue
		}
		if t.Coord != key {
			r.fail("tile keyed at %s reports coordinate %s", key, t.Coord)
		}
		if !t.Validate() {
			r.fail("tile at %s failed self-validation", key)
		}
	}
	if len(m.order) != len(m.tiles) {
		r.fail("insertion order tracks %d tiles, dictionary holds %d", len(m.order), len(m.tiles))
	}
	return r, nil
}

// clamp returns c limited to the configured rectangle.
func (m *Map) clamp(c Coord) Coord {
	if c.X < 0 {
		c.X = 0
	} else if c.X >= m.Width {
		c.X = m.Width - 1
	}
	if c.Y < 0 {
		c.Y = 0
	} else if c.Y >= m.Height {
		c.Y = m.Height - 1
	}
	return c
}

// ValidateDimensions checks that every tile lies inside the configured
// rectangle. A tile the clamp would move is genuinely out of range and
// fails; a tile count below width x height is merely sparse and is
// logged as a warning, not a failure.
func (m *Map) ValidateDimensions() (*Report, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	r := &Report{}
	for _, c := range m.order {
		if c.X < 0 || c.Y < 0 {
			r.fail("tile at %s has negative components", c)
			continue
		}
		if !m.InBounds(c) {
			r.fail("tile at %s lies outside %dx%d", c, m.Width, m.Height)
			continue
		}
		if clamped := m.clamp(c); clamped != c {
			r.fail("tile at %s would clamp to %s", c, clamped)
		}
	}
	if expected := m.Width * m.Height; len(m.tiles) != expected {
		slog.Warn("sparse map", "map", m.Name, "tiles", len(m.tiles), "expected", expected)
		r.warn("tile count %d differs from theoretical %d", len(m.tiles), expected)
	}
	return r, nil
}

// ValidateConnectivity checks the derived neighbor graph against the
// coordinate function. For each tile and direction it recomputes the
// expected neighbor coordinate and compares the tile's cache against the
// map's resident tile there, failing on: a cached neighbor at the wrong
// coordinate, a missing link to a resident neighbor, a cached tile absent
// from the map, or a cached reference differing from the resident one.
// Valid links are additionally checked for bidirectionality, reported as
// its own violation kind. Tiles with resident neighbor cells but zero
// valid links are warned about as orphans.
func (m *Map) ValidateConnectivity() (*Report, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	r := &Report{}
	for _, key := range m.order {
		t := m.tiles[key]
		if t == nil {
			continue // integrity's problem, not connectivity's
		}
		validLinks := 0
		residentNeighbors := 0
		for _, d := range Directions {
			want := NeighborOf(t.Coord, d)
			resident := m.tiles[want]
			if resident != nil {
				residentNeighbors++
			}
			cached := t.Neighbor(d)
			switch {
			case cached == nil && resident == nil:
				// Nothing there, nothing cached.
			case cached == nil:
				r.fail("tile %s missing link %s to resident neighbor %s", t.Coord, d, want)
			case cached.Coord != want:
				r.fail("tile %s links %s to %s, expected coordinate %s", t.Coord, d, cached.Coord, want)
			case resident == nil:
				r.fail("tile %s links %s to %s which is absent from the map", t.Coord, d, want)
			case cached != resident:
				r.fail("tile %s links %s to a stale reference at %s", t.Coord, d, want)
			default:
				validLinks++
				if back := cached.Neighbor(d.Opposite()); back != t {
					r.fail("non-bidirectional link: %s -> %s at %s has no reverse link", t.Coord, want, d)
				}
			}
		}
		if validLinks == 0 && residentNeighbors > 0 {
			r.warn("tile %s has %d resident neighbor cells but no valid links", t.Coord, residentNeighbors)
		}
	}
	return r, nil
}
