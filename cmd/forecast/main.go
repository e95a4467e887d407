package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/craftline/forecast-backend/internal/cache"
	"github.com/craftline/forecast-backend/internal/config"
	"github.com/craftline/forecast-backend/internal/export"
	"github.com/craftline/forecast-backend/internal/forecast"
	"github.com/craftline/forecast-backend/internal/ingest"
	"github.com/craftline/forecast-backend/internal/repository/postgres"
	"github.com/craftline/forecast-backend/internal/service"
	"github.com/craftline/forecast-backend/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "forecast",
		Usage: "Material demand forecasting batch tools",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Regenerate forecast snapshots for all or selected materials",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "material-ids",
						Usage: "Comma-separated material IDs (default: all materials)",
					},
					&cli.IntFlag{
						Name:    "horizon-days",
						Usage:   "Projection horizon in days",
						Value:   30,
						EnvVars: []string{"FORECAST_HORIZON_DAYS"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Concurrent materials processed",
						Value:   4,
						EnvVars: []string{"FORECAST_WORKER_COUNT"},
					},
				},
				Action: runForecast,
			},
			{
				Name:  "export",
				Usage: "Write the replenishment schedule and forecast summaries as CSV",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "output-dir",
						Usage:   "Directory for generated CSV files",
						Value:   "./data/exports",
						EnvVars: []string{"EXPORT_OUTPUT_DIR"},
					},
					&cli.BoolFlag{
						Name:    "upload",
						Usage:   "Archive the schedule CSV to object storage",
						EnvVars: []string{"EXPORT_UPLOAD"},
					},
				},
				Action: exportReports,
			},
			{
				Name:  "import",
				Usage: "Backfill the consumption ledger from a legacy CSV export",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "CSV file with material_code, date, quantity columns",
						Required: true,
					},
				},
				Action: importConsumption,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*postgres.DB, error) {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return postgres.Wrap(db), nil
}

func buildService(db *postgres.DB, horizonDays, workers int) *service.ForecastService {
	materials := postgres.NewMaterialRepository(db)
	products := postgres.NewProductRepository(db)
	bom := postgres.NewBOMRepository(db)
	consumption := postgres.NewConsumptionRepository(db)
	orders := postgres.NewOrderRepository(db)
	snapshots := postgres.NewSnapshotRepository(db)
	runs := postgres.NewRunRepository(db)

	engine := forecast.NewEngine(materials, products, bom, consumption, orders, snapshots, runs, forecast.Config{
		HorizonDays: horizonDays,
		WorkerCount: workers,
	})

	return service.NewForecastService(engine, materials, snapshots, runs, cache.NewNoopForecastCache())
}

func runForecast(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	materialIDs, err := parseMaterialIDs(c.String("material-ids"))
	if err != nil {
		return err
	}

	svc := buildService(db, c.Int("horizon-days"), c.Int("workers"))
	result, err := svc.RunForecast(context.Background(), materialIDs...)
	if err != nil {
		return fmt.Errorf("forecast run failed: %w", err)
	}

	log.Printf("Run %s: %d materials processed, %d skipped",
		result.Run.ID, len(result.Results), len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		log.Printf("  skipped material %d: %s", d.MaterialID, d.Reason)
	}
	return nil
}

func exportReports(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := buildService(db, 30, 4)
	ctx := context.Background()

	var store storage.ObjectStorage
	if c.Bool("upload") {
		store, err = storage.NewObjectStorage(config.Load().Storage)
		if err != nil {
			return fmt.Errorf("object storage unavailable: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensuring bucket: %w", err)
		}
	}

	schedule, diagnostics, err := svc.GetReplenishmentSchedule(ctx)
	if err != nil {
		return fmt.Errorf("building schedule: %w", err)
	}
	for _, d := range diagnostics {
		log.Printf("  skipped material %d: %s", d.MaterialID, d.Reason)
	}

	exporter := export.NewScheduleExporter(c.String("output-dir"), store)
	schedulePath, err := exporter.Write(ctx, schedule)
	if err != nil {
		return err
	}
	log.Printf("Wrote %s", schedulePath)

	summaries, err := svc.GetSummaries(ctx)
	if err != nil {
		return fmt.Errorf("loading summaries: %w", err)
	}
	summaryPath, err := exporter.WriteSummaries(summaries, schedule.GeneratedAt)
	if err != nil {
		return err
	}
	log.Printf("Wrote %s", summaryPath)
	return nil
}

func importConsumption(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	materials := postgres.NewMaterialRepository(db)
	consumption := postgres.NewConsumptionRepository(db)

	importer := ingest.NewConsumptionImporter(materials, consumption)
	result, err := importer.ImportFile(context.Background(), c.String("file"))
	if err != nil {
		return err
	}

	log.Printf("Imported %d ledger events, skipped %d rows", result.Inserted, result.Skipped)
	return nil
}

func parseMaterialIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid material id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
