package mapfile

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store archives persisted map documents in a SQLite database, keyed by
// map name. Saving replaces any previous document for the same map.
type Store struct {
	conn *sqlx.DB
}

// OpenStore opens or creates a map archive at the given path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		name TEXT PRIMARY KEY,
		configuration TEXT NOT NULL,
		version INTEGER NOT NULL,
		checksum TEXT NOT NULL,
		created_at TEXT NOT NULL,
		tile_count INTEGER NOT NULL,
		tiles_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS store_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO store_meta (key, value) VALUES ('schema_version', '1')")
	return err
}

// Save writes a document to the archive, replacing any existing document
// with the same map name. The document's own header checksum must
// already be valid; Save never restamps content.
func (s *Store) Save(d *Document) error {
	if d == nil {
		return ErrNilDocument
	}
	if !Validate(d) {
		return fmt.Errorf("mapfile: refusing to archive %q with a stale checksum", d.Header.MapName)
	}

	tilesJSON, err := json.Marshal(d.Tiles)
	if err != nil {
		return fmt.Errorf("encode tiles: %w", err)
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR REPLACE INTO maps
		(name, configuration, version, checksum, created_at, tile_count, tiles_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.Header.MapName, d.Header.Configuration, d.Header.Version,
		d.Header.Checksum, d.Header.CreatedAt.Format(time.RFC3339Nano),
		len(d.Tiles), string(tilesJSON),
	)
	if err != nil {
		return fmt.Errorf("insert map %q: %w", d.Header.MapName, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("map archived", "name", d.Header.MapName, "tiles", len(d.Tiles))
	return nil
}

type mapRow struct {
	Name          string `db:"name"`
	Configuration string `db:"configuration"`
	Version       int    `db:"version"`
	Checksum      string `db:"checksum"`
	CreatedAt     string `db:"created_at"`
	TileCount     int    `db:"tile_count"`
	TilesJSON     string `db:"tiles_json"`
}

func (r mapRow) header() (Header, error) {
	created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return Header{}, fmt.Errorf("parse created_at for %q: %w", r.Name, err)
	}
	return Header{
		MapName:       r.Name,
		Configuration: r.Configuration,
		Version:       r.Version,
		Checksum:      r.Checksum,
		CreatedAt:     created,
	}, nil
}

// Load retrieves the archived document for the given map name. A missing
// map returns (nil, nil).
func (s *Store) Load(name string) (*Document, error) {
	var row mapRow
	err := s.conn.Get(&row, "SELECT * FROM maps WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load map %q: %w", name, err)
	}

	header, err := row.header()
	if err != nil {
		return nil, err
	}
	var tiles []TileRecord
	if err := json.Unmarshal([]byte(row.TilesJSON), &tiles); err != nil {
		return nil, fmt.Errorf("decode tiles for %q: %w", name, err)
	}
	return &Document{Header: header, Tiles: tiles}, nil
}

// List returns the headers of all archived maps, ordered by name.
func (s *Store) List() ([]Header, error) {
	var rows []mapRow
	err := s.conn.Select(&rows,
		"SELECT name, configuration, version, checksum, created_at, tile_count, '' AS tiles_json FROM maps ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	headers := make([]Header, 0, len(rows))
	for _, r := range rows {
		h, err := r.header()
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}

// Delete removes an archived map, reporting whether it was present.
func (s *Store) Delete(name string) (bool, error) {
	res, err := s.conn.Exec("DELETE FROM maps WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("delete map %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
