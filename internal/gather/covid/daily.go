package covid

import (
	"context"
	"fmt"
	"log/slog"

	"inacovid/internal/arcgis"
	"inacovid/internal/domain"
)

// Daily collects the national daily series up to the current reporting day.
type Daily struct {
	deps Deps
	log  *slog.Logger
}

// NewDaily creates the daily-series operation.
func NewDaily(d Deps) *Daily {
	return &Daily{deps: d, log: d.logger(LabelDaily)}
}

// Name returns the gatherer identifier.
func (g *Daily) Name() string { return LabelDaily }

// Run fetches every day before the current reporting day, upserts them by
// date, archives them when an archive is configured and writes the daily
// snapshot.
func (g *Daily) Run(ctx context.Context) (string, error) {
	c := g.deps.Client
	attrs, err := c.Features(ctx, arcgis.EndpointProgress, arcgis.WhereBeforeToday{},
		arcgis.ListingParams("Tanggal asc")...)
	if err != nil {
		return "", fmt.Errorf("fetching daily series: %w", err)
	}

	now := c.Calendar().Now()
	stats := make([]domain.DailyStat, 0, len(attrs))
	for _, a := range attrs {
		stats = append(stats, domain.NewStat(a, now).ToDaily())
	}

	n, err := g.deps.Store.UpsertDaily(ctx, stats)
	if err != nil {
		return "", err
	}
	g.log.Info("daily stats stored", "fetched", len(attrs), "written", n)

	if g.deps.Archive != nil {
		added, err := g.deps.Archive.ArchiveDaily(ctx, stats)
		if err != nil {
			return "", err
		}
		g.log.Info("daily stats archived", "added", added)
	}

	path, err := g.deps.Snapshots.Write(LabelDaily, stats)
	if err != nil {
		return "", err
	}
	g.log.Info("snapshot written", "path", path)

	return "Daily stats succesfully stored", nil
}
