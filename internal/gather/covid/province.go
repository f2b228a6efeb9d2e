package covid

import (
	"context"
	"fmt"
	"log/slog"

	"inacovid/internal/arcgis"
	"inacovid/internal/domain"
)

// Province collects the per-province breakdown, largest case count first.
type Province struct {
	deps Deps
	log  *slog.Logger
}

// NewProvince creates the per-province operation.
func NewProvince(d Deps) *Province {
	return &Province{deps: d, log: d.logger(LabelProvince)}
}

// Name returns the gatherer identifier.
func (g *Province) Name() string { return LabelProvince }

// Run fetches all provinces, upserts them by "{province}_{date}" and writes
// the province snapshot.
func (g *Province) Run(ctx context.Context) (string, error) {
	c := g.deps.Client
	attrs, err := c.Features(ctx, arcgis.EndpointProvince, arcgis.WhereAll{},
		arcgis.ListingParams("Kasus_Posi desc")...)
	if err != nil {
		return "", fmt.Errorf("fetching provinces: %w", err)
	}

	now := c.Calendar().Now()
	stats := make([]domain.ProvinceStat, 0, len(attrs))
	for _, a := range attrs {
		stats = append(stats, domain.NewStat(a, now).ToProvince())
	}

	n, err := g.deps.Store.UpsertProvince(ctx, stats)
	if err != nil {
		return "", err
	}
	g.log.Info("province stats stored", "fetched", len(attrs), "written", n)

	path, err := g.deps.Snapshots.Write(LabelProvince, stats)
	if err != nil {
		return "", err
	}
	g.log.Info("snapshot written", "path", path)

	return "Province stats succesfully stored", nil
}
