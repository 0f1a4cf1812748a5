package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"morning-post/internal/domain/entity"
)

// LocalSource serves holidays from a JSON file keyed by "MM-DD".
// It covers recurring observances and works without network access.
//
// File format:
//
//	{
//	  "01-01": [{"name": "Новый год", "emoji": "🎄"}],
//	  "10-01": [{"name": "Международный день кофе", "emoji": "☕"}]
//	}
type LocalSource struct {
	byDay map[string][]localHoliday
}

type localHoliday struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// NewLocalSource loads the holiday file at path.
func NewLocalSource(path string) (*LocalSource, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read holidays file: %w", err)
	}

	byDay := make(map[string][]localHoliday)
	if err := json.Unmarshal(data, &byDay); err != nil {
		return nil, fmt.Errorf("parse holidays file: %w", err)
	}
	return &LocalSource{byDay: byDay}, nil
}

// ForDate implements Source.
func (s *LocalSource) ForDate(_ context.Context, date time.Time) ([]entity.Holiday, error) {
	entries := s.byDay[date.Format("01-02")]
	if len(entries) == 0 {
		return nil, nil
	}

	out := make([]entity.Holiday, 0, len(entries))
	for _, e := range entries {
		out = append(out, entity.Holiday{
			Name:        e.Name,
			Description: e.Description,
			Emoji:       e.Emoji,
		})
	}
	return out, nil
}
