package holidays

import (
	"context"
	"log/slog"
	"time"

	"morning-post/internal/domain/entity"
)

// Multi queries sources in order and merges their results, deduplicating by
// name. A failing source is logged and skipped; Multi itself never fails, so
// an API outage degrades the post instead of blocking it.
type Multi struct {
	sources []Source
}

// NewMulti combines the given sources. Earlier sources win on duplicates.
func NewMulti(sources ...Source) *Multi {
	return &Multi{sources: sources}
}

// ForDate implements Source.
func (m *Multi) ForDate(ctx context.Context, date time.Time) ([]entity.Holiday, error) {
	var all []entity.Holiday
	for _, src := range m.sources {
		found, err := src.ForDate(ctx, date)
		if err != nil {
			slog.WarnContext(ctx, "holiday source failed, continuing",
				slog.String("date", date.Format("2006-01-02")),
				slog.Any("error", err))
			continue
		}
		all = append(all, found...)
	}
	return dedupeByName(all), nil
}
