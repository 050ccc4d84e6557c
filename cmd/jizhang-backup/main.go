// Command jizhang-backup dumps the ledger to a CSV file or restores one,
// going straight to the database without the chat engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"jizhang/internal/codec"
	"jizhang/internal/config"
	"jizhang/internal/core"
	"jizhang/internal/ledger"
	applog "jizhang/internal/log"
	"jizhang/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New("jizhang-backup", slog.LevelInfo)
	applog.SetDefault(logger)

	var (
		exportPath = flag.String("export", "", "write the whole ledger to this CSV file")
		importPath = flag.String("import", "", "restore records from this CSV file")
		clearFirst = flag.Bool("clear", false, "with -import: wipe the ledger before restoring")
	)
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		fmt.Fprintln(os.Stderr, "usage: jizhang-backup -export FILE | -import FILE [-clear]")
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	led := ledger.New(repo, cfg.CacheSize)
	ctx := context.Background()

	if *exportPath != "" {
		if err := runExport(ctx, led, *exportPath); err != nil {
			logger.Error("Export failed", "error", err, "path", *exportPath)
			os.Exit(1)
		}
		return
	}

	if err := runImport(ctx, led, cfg, *importPath, *clearFirst); err != nil {
		logger.Error("Import failed", "error", err, "path", *importPath)
		os.Exit(1)
	}
}

func runExport(ctx context.Context, led *ledger.Ledger, path string) error {
	records, err := led.Export(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if err := codec.Write(f, records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	slog.Info("Export completed", "path", path, "records", len(records))
	return nil
}

func runImport(ctx context.Context, led *ledger.Ledger, cfg *config.Config, path string, clearFirst bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	res, err := codec.Read(f, cfg.Location(), time.Now())
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	drafts := make([]core.Draft, 0, len(res.Rows))
	for _, row := range res.Rows {
		drafts = append(drafts, row.Draft)
	}

	imported, err := led.BulkImport(ctx, drafts, clearFirst)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	slog.Info("Import completed",
		"path", path,
		"imported", imported,
		"skipped", res.Skipped,
		"fallbacks", res.Fallbacks,
		"cleared", clearFirst)
	return nil
}
