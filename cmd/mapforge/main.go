// Command mapforge generates a procedural map from a seed and writes it
// as a persisted document to a file and/or the map archive.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/talgya/hexfront/internal/hexmap"
	"github.com/talgya/hexfront/internal/mapfile"
	"github.com/talgya/hexfront/internal/mapgen"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	godotenv.Load()

	var (
		name       = flag.String("name", "generated", "map name")
		configName = flag.String("configuration", "small", "map size: small or large")
		seed       = flag.Int64("seed", 0, "generation seed (0 = random)")
		outPath    = flag.String("out", "", "write the document to this file")
		storePath  = flag.String("store", os.Getenv("HEXFRONT_STORE"), "also archive into this database")
	)
	flag.Parse()

	if *outPath == "" && *storePath == "" {
		slog.Error("nothing to do: give -out and/or -store")
		os.Exit(2)
	}

	config, err := hexmap.ParseConfiguration(*configName)
	if err != nil {
		slog.Error("bad configuration", "error", err)
		os.Exit(2)
	}

	cfg := mapgen.DefaultGenConfig()
	cfg.Name = *name
	cfg.Configuration = config
	cfg.Seed = *seed

	m, err := mapgen.Generate(cfg)
	if err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
	defer m.Dispose()
	slog.Info("map generated", "name", m.Name, "size", m.String())

	doc, err := mapfile.FromMap(m)
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		os.Exit(1)
	}

	if *outPath != "" {
		if err := mapfile.WriteFile(*outPath, doc); err != nil {
			slog.Error("write failed", "file", *outPath, "error", err)
			os.Exit(1)
		}
		slog.Info("document written", "file", *outPath, "checksum", doc.Header.Checksum)
	}
	if *storePath != "" {
		store, err := mapfile.OpenStore(*storePath)
		if err != nil {
			slog.Error("open store failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := store.Save(doc); err != nil {
			slog.Error("archive failed", "error", err)
			os.Exit(1)
		}
	}
}
