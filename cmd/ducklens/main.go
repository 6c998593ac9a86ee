// cmd/ducklens/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"

	"github.com/jaysongor/ducklens-backend/internal/config"
	"github.com/jaysongor/ducklens-backend/internal/ingest"
	"github.com/jaysongor/ducklens-backend/internal/pipeline"
	"github.com/jaysongor/ducklens-backend/internal/storage"
	"github.com/jaysongor/ducklens-backend/internal/warehouse"
	"github.com/jaysongor/ducklens-backend/pkg/logger"
)

func main() {
	var (
		cfg *config.Config
		db  *warehouse.DB
		wh  *warehouse.Warehouse
	)

	app := &cli.App{
		Name:  "ducklens",
		Usage: "batch analytics for retail point-of-sale data",
		Before: func(c *cli.Context) error {
			cfg = config.Load()
			logger.SetLevel(os.Getenv("LOG_LEVEL"))

			var err error
			db, err = warehouse.NewDBWithDriver("pgx", cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			wh = warehouse.New(db)
			return wh.EnsureSchema(c.Context)
		},
		After: func(*cli.Context) error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "recompute facts and all summaries from the staged batch",
				Action: func(c *cli.Context) error {
					runner := pipeline.NewRunner(wh, cfg.Analytics)
					result, err := runner.Run(c.Context)
					if err != nil {
						return err
					}
					logger.Log.Info().
						Int("raw_records", result.RawRecords).
						Int("fact_records", result.FactRecords).
						Int("promo_records", result.PromoRecords).
						Msg("run finished")
					return nil
				},
			},
			{
				Name:      "ingest",
				Usage:     "load CSV/XLSX files into the staging table",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "clear the staged batch before loading",
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return fmt.Errorf("at least one file is required")
					}
					return ingestFiles(c.Context, wh, c.Args().Slice(), c.Bool("replace"))
				},
			},
			{
				Name:  "fetch",
				Usage: "download raw batch files from object storage into the upload dir",
				Action: func(c *cli.Context) error {
					return fetchBatchFiles(c.Context, cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func ingestFiles(ctx context.Context, wh *warehouse.Warehouse, paths []string, replace bool) error {
	first := true
	for _, path := range paths {
		raws, err := ingest.ReadFile(path)
		if err != nil {
			return err
		}
		if replace && first {
			if err := wh.ReplaceStaging(ctx, raws); err != nil {
				return err
			}
		} else {
			if err := wh.AppendStaging(ctx, raws); err != nil {
				return err
			}
		}
		first = false
		logger.Log.Info().Str("file", path).Int("records", len(raws)).Msg("staged batch file")
	}
	return nil
}

func fetchBatchFiles(ctx context.Context, cfg *config.Config) error {
	store, err := storage.NewMinio(cfg.Storage)
	if err != nil {
		return err
	}
	keys, err := store.List(ctx)
	if err != nil {
		return err
	}

	fetched := 0
	for _, key := range keys {
		ext := strings.ToLower(filepath.Ext(key))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		dest := filepath.Join(cfg.App.UploadDir, filepath.Base(key))
		if err := store.DownloadToFile(ctx, key, dest); err != nil {
			return err
		}
		fetched++
	}
	logger.Log.Info().Int("files", fetched).Str("dir", cfg.App.UploadDir).Msg("fetched batch files")
	return nil
}
