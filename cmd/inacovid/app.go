package main

import (
	"context"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"inacovid/internal/arcgis"
	"inacovid/internal/config"
	"inacovid/internal/gather/covid"
	"inacovid/internal/snapshot"
	"inacovid/internal/store"
	"inacovid/internal/util"
)

// app holds the collaborators built once per invocation and shared by every
// operation.
type app struct {
	log   *slog.Logger
	store *store.SQLStore
	deps  covid.Deps
}

func newApp(ctx context.Context, cfgPath, logLevel string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	if err := cfg.EnsureOutputDirs(); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	cal := util.NewReportingCalendar(util.DefaultCutoff, nil)
	client := arcgis.NewClient(
		arcgis.NewHTTPFetcher(resty.New()),
		arcgis.Endpoints{Province: cfg.Endpoints.Province, Progress: cfg.Endpoints.Progress},
		cal, logger,
	)

	deps := covid.Deps{
		Client:    client,
		Store:     st,
		Snapshots: snapshot.NewWriter(cfg.JSONOutputDir, cal),
		Log:       logger,
	}
	if cfg.ParquetDir != "" {
		deps.Archive = store.NewParquetArchive(cfg.ParquetDir)
	}

	logger.Info("starting collection run", "json_dir", cfg.JSONOutputDir, "parquet_dir", cfg.ParquetDir)
	return &app{log: logger, store: st, deps: deps}, nil
}

// Close releases the database pool.
func (a *app) Close() error {
	return a.store.Close()
}
