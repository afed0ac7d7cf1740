package mapfile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Compute returns the SHA-256 digest of the canonical tile-array
// encoding as lowercase hex. The canonical encoding is the compact JSON
// of the tile array: declared field order, no formatting whitespace.
// Identical tile content always yields an identical digest.
func Compute(tiles []TileRecord) (string, error) {
	if tiles == nil {
		return "", ErrNoTiles
	}
	data, err := json.Marshal(tiles)
	if err != nil {
		return "", fmt.Errorf("encode tiles: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Validate recomputes the digest over the document's tiles and compares
// it case-insensitively to the stored header checksum. A nil document,
// missing tile array, or empty stored checksum is a validation failure,
// not an error.
func Validate(d *Document) bool {
	if d == nil || d.Tiles == nil || d.Header.Checksum == "" {
		return false
	}
	sum, err := Compute(d.Tiles)
	if err != nil {
		return false
	}
	return strings.EqualFold(sum, d.Header.Checksum)
}

// UpdateChecksum recomputes the digest and overwrites the header
// checksum. This is the only sanctioned way to change the stored digest.
func UpdateChecksum(d *Document) error {
	if d == nil {
		return ErrNilDocument
	}
	sum, err := Compute(d.Tiles)
	if err != nil {
		return err
	}
	d.Header.Checksum = sum
	return nil
}
