package hexmap

import "fmt"

// BorderCategory tags what kind of edge feature a BorderSet describes.
type BorderCategory uint8

const (
	BorderNone BorderCategory = iota
	BorderRiver
	BorderBridge
	BorderPontoonBridge
	BorderDestroyedBridge
)

var borderCategoryNames = map[BorderCategory]string{
	BorderNone:            "none",
	BorderRiver:           "river",
	BorderBridge:          "bridge",
	BorderPontoonBridge:   "pontoon bridge",
	BorderDestroyedBridge: "destroyed bridge",
}

// String returns the category name.
func (c BorderCategory) String() string {
	if name, ok := borderCategoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("BorderCategory(%d)", uint8(c))
}

// BitOrder selects the character-position layout of a 6-bit border string.
// The order is always stated explicitly by the caller, never inferred from
// content, so old save data cannot be silently misread.
type BitOrder uint8

const (
	// OrderCanonical lays out positions as NW,NE,E,SE,SW,W.
	OrderCanonical BitOrder = iota
	// OrderLegacy lays out positions as NE,E,SE,SW,W,NW. Used by save
	// data written before the format-2 migration.
	OrderLegacy
)

// bitOrderTables maps each BitOrder to its fixed position permutation:
// table[i] is the Direction encoded at string position i.
var bitOrderTables = [2][NumDirections]Direction{
	OrderCanonical: {NorthWest, NorthEast, East, SouthEast, SouthWest, West},
	OrderLegacy:    {NorthEast, East, SouthEast, SouthWest, West, NorthWest},
}

// Valid reports whether o is a known bit order.
func (o BitOrder) Valid() bool {
	return o == OrderCanonical || o == OrderLegacy
}

// String returns the bit-order name.
func (o BitOrder) String() string {
	switch o {
	case OrderCanonical:
		return "canonical"
	case OrderLegacy:
		return "legacy"
	}
	return fmt.Sprintf("BitOrder(%d)", uint8(o))
}

// FormatError reports a malformed border bit-string. It is a data
// condition, not a programmer error.
type FormatError struct {
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("hexmap: invalid border string %q: %s", e.Value, e.Reason)
}

// BorderSet holds one boolean per hex edge for a single border category.
// The zero value is an empty set with category BorderNone.
type BorderSet struct {
	Category BorderCategory
	edges    [NumDirections]bool
}

// NewBorderSet returns an empty border set tagged with the given category.
func NewBorderSet(category BorderCategory) BorderSet {
	return BorderSet{Category: category}
}

// Get reports whether the edge in direction d carries the border feature.
func (b *BorderSet) Get(d Direction) bool {
	return b.edges[d]
}

// Set marks or clears the edge in direction d.
func (b *BorderSet) Set(d Direction, present bool) {
	b.edges[d] = present
}

// HasAny reports whether any edge carries the border feature.
func (b *BorderSet) HasAny() bool {
	for _, set := range b.edges {
		if set {
			return true
		}
	}
	return false
}

// Reset clears all six edges. The category tag is kept.
func (b *BorderSet) Reset() {
	b.edges = [NumDirections]bool{}
}

// String encodes the set as a 6-character binary string in the given
// bit order.
func (b *BorderSet) String(order BitOrder) string {
	table := bitOrderTables[order]
	buf := make([]byte, NumDirections)
	for i, d := range table {
		if b.edges[d] {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

// ParseBorderSet decodes a 6-character binary string in the given bit
// order into a border set tagged with category. Strings of the wrong
// length or containing characters other than '0'/'1' fail with a
// *FormatError.
func ParseBorderSet(s string, order BitOrder, category BorderCategory) (BorderSet, error) {
	if len(s) != NumDirections {
		return BorderSet{}, &FormatError{Value: s, Reason: fmt.Sprintf("length %d, want %d", len(s), NumDirections)}
	}
	b := NewBorderSet(category)
	table := bitOrderTables[order]
	for i := 0; i < NumDirections; i++ {
		switch s[i] {
		case '0':
			b.edges[table[i]] = false
		case '1':
			b.edges[table[i]] = true
		default:
			return BorderSet{}, &FormatError{Value: s, Reason: fmt.Sprintf("character %q at position %d", s[i], i)}
		}
	}
	return b, nil
}

// ConvertOrder re-encodes a 6-bit border string from one bit order to
// another. Converting canonical->legacy->canonical is the identity.
func ConvertOrder(s string, from, to BitOrder) (string, error) {
	b, err := ParseBorderSet(s, from, BorderNone)
	if err != nil {
		return "", err
	}
	return b.String(to), nil
}
