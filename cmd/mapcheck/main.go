// Command mapcheck verifies a persisted map: header, checksum, and the
// three structural validators. Exit status 0 means the map is sound.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/talgya/hexfront/internal/hexmap"
	"github.com/talgya/hexfront/internal/mapfile"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	godotenv.Load()

	var (
		filePath  = flag.String("file", "", "persisted map file to check")
		storePath = flag.String("store", os.Getenv("HEXFRONT_STORE"), "map archive database")
		mapName   = flag.String("name", "", "map name to load from the archive")
	)
	flag.Parse()

	var doc *mapfile.Document
	switch {
	case *filePath != "":
		var err error
		doc, err = mapfile.ReadFile(*filePath)
		if err != nil {
			slog.Error("read failed", "file", *filePath, "error", err)
			os.Exit(1)
		}
	case *storePath != "" && *mapName != "":
		store, err := mapfile.OpenStore(*storePath)
		if err != nil {
			slog.Error("open store failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		doc, err = store.Load(*mapName)
		if err != nil {
			slog.Error("load failed", "name", *mapName, "error", err)
			os.Exit(1)
		}
		if doc == nil {
			slog.Error("map not found in archive", "name", *mapName)
			os.Exit(1)
		}
	default:
		slog.Error("usage: mapcheck -file map.json | mapcheck -store maps.db -name <map>")
		os.Exit(2)
	}

	failures := 0

	if err := doc.Header.Validate(); err != nil {
		slog.Error("header invalid", "error", err)
		failures++
	}
	if !mapfile.Validate(doc) {
		slog.Error("checksum mismatch", "map", doc.Header.MapName)
		failures++
	}

	m, err := doc.BuildMap()
	if err != nil {
		slog.Error("map build failed", "error", err)
		os.Exit(1)
	}
	defer m.Dispose()

	checks := []struct {
		name string
		run  func() (*hexmap.Report, error)
	}{
		{"integrity", m.ValidateIntegrity},
		{"dimensions", m.ValidateDimensions},
		{"connectivity", m.ValidateConnectivity},
	}
	for _, check := range checks {
		r, err := check.run()
		if err != nil {
			slog.Error("validator error", "check", check.name, "error", err)
			os.Exit(1)
		}
		for _, w := range r.Warnings {
			slog.Warn("validation warning", "check", check.name, "warning", w)
		}
		if !r.OK() {
			for _, v := range r.Violations() {
				slog.Error("violation", "check", check.name, "error", v)
			}
			failures++
		}
	}

	slog.Info("map checked",
		"map", doc.Header.MapName,
		"configuration", doc.Header.Configuration,
		"tiles", m.TileCount(),
		"failed_checks", failures,
	)
	if failures > 0 {
		os.Exit(1)
	}
}
