// Package legacy reads the retired binary map format and migrates it,
// one file at a time, into the current persisted format. Nothing here
// runs at game time; the migrator is a one-shot offline pipeline.
//
// Binary layout (little-endian throughout):
//
//	magic      [4]byte "HGB1"
//	nameLen    uint16, name nameLen bytes (UTF-8)
//	config     uint8  (0 none, 1 small, 2 large)
//	version    int32
//	tileCount  uint32
//	tiles      tileCount records:
//	  x, y            int16
//	  terrain         uint8
//	  movementCost    uint8
//	  flags           uint8 (bit0 rail, bit1 road, bit2 fort,
//	                         bit3 airbase, bit4 objective, bit5 visible)
//	  control         uint8
//	  defaultControl  uint8
//	  label           uint16 length + bytes
//	  largeLabel      uint16 length + bytes
//	  labelSize, labelWeight, labelColor  uint8
//	  outline, victory, airbaseDamage    float32
//	  urbanDamage     int16
//	  rivers, bridges, pontoons, damaged [6]byte border strings
//
// Border strings are stored in whatever bit order the writing tool used;
// the migrator is told the order explicitly and never guesses.
package legacy

import (
	"encoding/binary"
	"fmt"
	"io"
)

var magic = [4]byte{'H', 'G', 'B', '1'}

// Record flags.
const (
	flagRail      = 1 << 0
	flagRoad      = 1 << 1
	flagFort      = 1 << 2
	flagAirbase   = 1 << 3
	flagObjective = 1 << 4
	flagVisible   = 1 << 5
)

// File is the decoded legacy map: header fields plus the raw tile
// records, untransformed.
type File struct {
	Name          string
	Configuration uint8
	Version       int32
	Tiles         []Record
}

// Record is one legacy tile, fields as stored on disk.
type Record struct {
	X, Y           int16
	Terrain        uint8
	MovementCost   uint8
	Flags          uint8
	Control        uint8
	DefaultControl uint8
	Label          string
	LargeLabel     string
	LabelSize      uint8
	LabelWeight    uint8
	LabelColor     uint8
	Outline        float32
	Victory        float32
	AirbaseDamage  float32
	UrbanDamage    int16
	Rivers         string
	Bridges        string
	Pontoons       string
	Damaged        string
}

// reader wraps an io.Reader with a sticky error so decode code can read
// field after field and check once.
type reader struct {
	r   io.Reader
	err error
}

func (r *reader) read(v any) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, binary.LittleEndian, v)
}

func (r *reader) readString() string {
	if r.err != nil {
		return ""
	}
	var n uint16
	r.read(&n)
	if r.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = err
		return ""
	}
	return string(buf)
}

func (r *reader) readBorder() string {
	if r.err != nil {
		return ""
	}
	var buf [6]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		r.err = err
		return ""
	}
	return string(buf[:])
}

// Decode reads a complete legacy map file. It fails on a bad magic
// number, truncated input, or an implausible tile count; it does not
// validate field content — that is the migrator's second stage.
func Decode(src io.Reader) (*File, error) {
	r := &reader{r: src}

	var m [4]byte
	r.read(&m)
	if r.err != nil {
		return nil, fmt.Errorf("legacy: read magic: %w", r.err)
	}
	if m != magic {
		return nil, fmt.Errorf("legacy: bad magic %q, want %q", m, magic)
	}

	f := &File{}
	f.Name = r.readString()
	r.read(&f.Configuration)
	r.read(&f.Version)

	var count uint32
	r.read(&count)
	if r.err != nil {
		return nil, fmt.Errorf("legacy: read header: %w", r.err)
	}
	// Largest supported map is 40x30; anything beyond that is corrupt.
	const maxTiles = 40 * 30
	if count > maxTiles {
		return nil, fmt.Errorf("legacy: implausible tile count %d", count)
	}

	f.Tiles = make([]Record, 0, count)
	for i := uint32(0); i < count; i++ {
		var rec Record
		r.read(&rec.X)
		r.read(&rec.Y)
		r.read(&rec.Terrain)
		r.read(&rec.MovementCost)
		r.read(&rec.Flags)
		r.read(&rec.Control)
		r.read(&rec.DefaultControl)
		rec.Label = r.readString()
		rec.LargeLabel = r.readString()
		r.read(&rec.LabelSize)
		r.read(&rec.LabelWeight)
		r.read(&rec.LabelColor)
		r.read(&rec.Outline)
		r.read(&rec.Victory)
		r.read(&rec.AirbaseDamage)
		r.read(&rec.UrbanDamage)
		rec.Rivers = r.readBorder()
		rec.Bridges = r.readBorder()
		rec.Pontoons = r.readBorder()
		rec.Damaged = r.readBorder()
		if r.err != nil {
			return nil, fmt.Errorf("legacy: read tile %d: %w", i, r.err)
		}
		f.Tiles = append(f.Tiles, rec)
	}
	return f, nil
}
