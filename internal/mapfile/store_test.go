package mapfile

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "maps.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSaveLoad(t *testing.T) {
	s := openTestStore(t)
	m := buildTestMap(t)
	doc, err := FromMap(m)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	back, err := s.Load("verdun")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back == nil {
		t.Fatal("Load returned nil for an archived map")
	}
	if back.Header.Checksum != doc.Header.Checksum {
		t.Error("checksum changed across archive round trip")
	}
	if len(back.Tiles) != len(doc.Tiles) {
		t.Errorf("tile count = %d, want %d", len(back.Tiles), len(doc.Tiles))
	}
	if !Validate(back) {
		t.Error("archived document should still validate")
	}

	missing, err := s.Load("nonexistent")
	if err != nil {
		t.Fatalf("Load(missing): %v", err)
	}
	if missing != nil {
		t.Error("Load of a missing map should return nil")
	}
}

func TestStoreRejectsStaleChecksum(t *testing.T) {
	s := openTestStore(t)
	m := buildTestMap(t)
	doc, _ := FromMap(m)
	doc.Tiles[0].IsRoad = true // stale checksum now

	if err := s.Save(doc); err == nil {
		t.Error("Save should reject a document with a stale checksum")
	}
}

func TestStoreListAndDelete(t *testing.T) {
	s := openTestStore(t)
	m := buildTestMap(t)

	names := []string{"alpha", "bravo", "charlie"}
	for _, name := range names {
		m.Name = name
		doc, err := FromMap(m)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Save(doc); err != nil {
			t.Fatal(err)
		}
	}

	headers, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(headers) != len(names) {
		t.Fatalf("List returned %d headers, want %d", len(headers), len(names))
	}
	for i, name := range names {
		if headers[i].MapName != name {
			t.Errorf("List()[%d] = %q, want %q", i, headers[i].MapName, name)
		}
	}

	removed, err := s.Delete("bravo")
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v", removed, err)
	}
	if removed, _ := s.Delete("bravo"); removed {
		t.Error("second Delete should report false")
	}
	headers, _ = s.List()
	if len(headers) != 2 {
		t.Errorf("List after delete returned %d headers", len(headers))
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	m := buildTestMap(t)

	doc, _ := FromMap(m)
	if err := s.Save(doc); err != nil {
		t.Fatal(err)
	}

	// Change the document and re-archive under the same name.
	updated, _ := FromMap(m)
	updated.Tiles[0].IsRoad = true
	if err := UpdateChecksum(updated); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(updated); err != nil {
		t.Fatal(err)
	}

	back, err := s.Load("verdun")
	if err != nil {
		t.Fatal(err)
	}
	if !back.Tiles[0].IsRoad {
		t.Error("Save should replace the archived document")
	}
	headers, _ := s.List()
	if len(headers) != 1 {
		t.Errorf("replacement produced %d rows, want 1", len(headers))
	}
}
