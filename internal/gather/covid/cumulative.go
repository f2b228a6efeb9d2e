package covid

import (
	"context"
	"log/slog"

	"inacovid/internal/arcgis"
	"inacovid/internal/domain"
)

// Summed fields of the progress layer, in result order.
var cumulativeFields = []string{
	"Jumlah_Pasien_Meninggal",
	"Jumlah_Pasien_Sembuh",
	"Jumlah_pasien_dalam_perawatan",
	"Jumlah_Kasus_Kumulatif",
}

// Cumulative collects the national running totals for one reporting day.
type Cumulative struct {
	deps   Deps
	offset int
	log    *slog.Logger
}

// NewCumulative creates the running-totals operation. offset selects the
// reporting day relative to the calendar day.
func NewCumulative(d Deps, offset int) *Cumulative {
	return &Cumulative{deps: d, offset: offset, log: d.logger(LabelCumulative)}
}

// Name returns the gatherer identifier.
func (g *Cumulative) Name() string { return LabelCumulative }

// Run sums the four totals concurrently, stores them under today's date and
// writes the cumulative snapshot.
func (g *Cumulative) Run(ctx context.Context) (string, error) {
	c := g.deps.Client
	sums, err := c.SumStatistics(ctx, arcgis.EndpointProgress,
		arcgis.WhereCurrentDate{Offset: g.offset}, cumulativeFields...)
	if err != nil {
		return "", err
	}

	stat := combineTotals(sums, c.Calendar().Today())

	n, err := g.deps.Store.UpsertCumulative(ctx, stat)
	if err != nil {
		return "", err
	}
	g.log.Info("cumulative stats stored", "date", *stat.Date, "written", n)

	path, err := g.deps.Snapshots.Write(LabelCumulative, stat)
	if err != nil {
		return "", err
	}
	g.log.Info("snapshot written", "path", path)

	return "Cumulative stats succesfully stored", nil
}

// combineTotals maps sums ordered as cumulativeFields onto a CumulativeStat.
func combineTotals(sums []*int64, date string) domain.CumulativeStat {
	return domain.CumulativeStat{
		Deaths:         sums[0],
		Recovered:      sums[1],
		UnderTreatment: sums[2],
		TotalCases:     sums[3],
		Date:           &date,
	}
}
