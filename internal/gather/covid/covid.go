// Package covid implements the three collection operations against the
// Indonesian COVID-19 feature services.
package covid

import (
	"log/slog"

	"inacovid/internal/arcgis"
	"inacovid/internal/gather"
	"inacovid/internal/snapshot"
	"inacovid/internal/store"
)

// ---------------------------------------------------------------------------
// Compile-time interface checks
// ---------------------------------------------------------------------------

var _ gather.Gatherer = (*Daily)(nil)
var _ gather.Gatherer = (*Cumulative)(nil)
var _ gather.Gatherer = (*Province)(nil)

// Snapshot labels, also used as gatherer names.
const (
	LabelDaily      = "daily"
	LabelCumulative = "cumulative"
	LabelProvince   = "province"
)

// Deps holds the collaborators shared by every operation of a run.
type Deps struct {
	Client    *arcgis.Client
	Store     store.StatStore
	Archive   store.DailyArchive // optional
	Snapshots *snapshot.Writer
	Log       *slog.Logger
}

func (d Deps) logger(name string) *slog.Logger {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return log.With("gatherer", name)
}

// All returns the operations of a full run in their fixed order.
func All(d Deps) []gather.Gatherer {
	return []gather.Gatherer{
		NewDaily(d),
		NewCumulative(d, 0),
		NewProvince(d),
	}
}
