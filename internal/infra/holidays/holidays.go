// Package holidays provides holiday lookups for the daily post.
// The primary source is the Calendarific API; a local JSON file serves
// as an offline fallback so a post is never blocked on the API.
package holidays

import (
	"context"
	"time"

	"morning-post/internal/domain/entity"
)

// Source returns the holidays observed on a given date.
// An empty slice is a valid result; the post simply omits the holiday block.
type Source interface {
	ForDate(ctx context.Context, date time.Time) ([]entity.Holiday, error)
}

// Noop is a Source that always returns no holidays.
// Used in tests and when no holiday source is configured.
type Noop struct{}

// ForDate implements Source.
func (Noop) ForDate(context.Context, time.Time) ([]entity.Holiday, error) {
	return nil, nil
}
