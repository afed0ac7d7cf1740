// Command hexmigrate converts legacy binary map files into the current
// persisted format, one file or a whole directory per run.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/talgya/hexfront/internal/hexmap"
	"github.com/talgya/hexfront/internal/legacy"
	"github.com/talgya/hexfront/internal/mapfile"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Optional .env for operator defaults; absence is fine.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env")
	}

	var (
		configPath = flag.String("config", os.Getenv("HEXMIGRATE_CONFIG"), "YAML batch config (directory mode)")
		inPath     = flag.String("in", "", "single legacy file to migrate")
		outPath    = flag.String("out", "", "output path for single-file mode")
		order      = flag.String("border-order", "legacy", "bit order of input border strings: legacy or canonical")
	)
	flag.Parse()

	switch {
	case *configPath != "":
		runBatch(*configPath)
	case *inPath != "" && *outPath != "":
		runSingle(*inPath, *outPath, *order)
	default:
		fmt.Fprintln(os.Stderr, "usage: hexmigrate -config job.yaml | hexmigrate -in old.hgb -out new.map.json [-border-order legacy]")
		os.Exit(2)
	}
}

func runBatch(configPath string) {
	cfg, err := legacy.LoadBatchConfig(configPath)
	if err != nil {
		slog.Error("bad batch config", "error", err)
		os.Exit(1)
	}
	mg, err := cfg.Migrator()
	if err != nil {
		slog.Error("bad migration options", "error", err)
		os.Exit(1)
	}

	report, err := mg.MigrateDir(cfg)
	if err != nil {
		slog.Error("batch migration failed", "error", err)
		os.Exit(1)
	}
	fmt.Print(report.String())
	if report.Succeeded() != report.Attempted() {
		os.Exit(1)
	}
}

func runSingle(inPath, outPath, order string) {
	opts := legacy.Options{}
	switch order {
	case "legacy":
		opts.BorderOrder = hexmap.OrderLegacy
	case "canonical":
		opts.BorderOrder = hexmap.OrderCanonical
	default:
		slog.Error("unknown border order", "order", order)
		os.Exit(2)
	}

	mg, err := legacy.NewMigrator(opts)
	if err != nil {
		slog.Error("bad migration options", "error", err)
		os.Exit(1)
	}
	res := mg.MigrateFile(inPath, outPath)
	if res.Err != nil {
		slog.Error("migration failed", "file", inPath, "error", res.Err)
		os.Exit(1)
	}
	slog.Info("migrated", "file", inPath, "output", outPath, "tiles", res.Tiles)

	// Confidence check: the emitted document must load cleanly.
	if _, _, err := mapfile.Load(outPath); err != nil {
		slog.Error("emitted document failed to load", "error", err)
		os.Exit(1)
	}
}
