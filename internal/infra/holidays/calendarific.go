package holidays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"morning-post/internal/domain/entity"
	"morning-post/internal/resilience/circuitbreaker"
	"morning-post/internal/resilience/retry"
)

// foodKeywords marks a holiday as food-related when any of them appears in
// its name or description. The channel is food-themed, so food holidays are
// preferred and foreign holidays are filtered down to them.
var foodKeywords = []string{
	"food", "eat", "cuisine", "dish", "meal", "breakfast", "lunch", "dinner",
	"chocolate", "coffee", "tea", "pizza", "burger", "cake", "pie", "cookie",
	"bread", "wine", "beer", "cocktail", "ice cream", "popcorn", "donut",
	"pancake", "waffle", "sandwich", "soup", "salad", "pasta", "rice",
	"fruit", "vegetable", "meat", "fish", "seafood", "cheese", "butter",
	"milk", "egg", "honey", "sugar", "salt", "pepper", "spice",
	"еда", "кухня", "блюдо", "завтрак", "обед", "ужин", "шоколад", "кофе",
	"чай", "пицца", "торт", "пирог", "печенье", "хлеб", "вино", "пиво",
	"мороженое", "попкорн", "пончик", "блин", "вафля", "суп", "салат",
	"паста", "рис", "фрукт", "овощ", "мясо", "рыба", "сыр", "масло",
	"молоко", "яйцо", "мёд",
}

// Client fetches holidays from the Calendarific API.
// Results are cached per date; only the most recent date is kept, since the
// pipeline only ever asks about today.
type Client struct {
	cfg            *Config
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config

	mu    sync.Mutex
	cache map[string][]entity.Holiday
}

// NewClient creates a Calendarific client with circuit breaker and retry
// logic preconfigured.
func NewClient(cfg *Config) *Client {
	return &Client{
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.CalendarificConfig()),
		retryConfig:    retry.HolidaysAPIConfig(),
		cache:          make(map[string][]entity.Holiday),
	}
}

// ForDate implements Source. The first configured country contributes all of
// its holidays; the remaining countries contribute food-related holidays
// only. Duplicates are removed by name and food holidays sort first.
func (c *Client) ForDate(ctx context.Context, date time.Time) ([]entity.Holiday, error) {
	key := date.Format("2006-01-02")

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var all []entity.Holiday
	for i, country := range c.cfg.Countries {
		fetched, err := c.fetchCountry(ctx, date, country)
		if err != nil {
			return nil, fmt.Errorf("fetch holidays for %s: %w", country, err)
		}
		if i > 0 {
			fetched = filterFood(fetched)
		}
		all = append(all, fetched...)
	}

	all = dedupeByName(all)
	sort.SliceStable(all, func(i, j int) bool {
		fi, fj := isFoodRelated(all[i]), isFoodRelated(all[j])
		if fi != fj {
			return fi
		}
		return all[i].Name < all[j].Name
	})

	c.mu.Lock()
	c.cache = map[string][]entity.Holiday{key: all}
	c.mu.Unlock()

	slog.InfoContext(ctx, "fetched holidays",
		slog.String("date", key),
		slog.Int("count", len(all)))
	return all, nil
}

// calendarificResponse mirrors the relevant parts of the API payload.
type calendarificResponse struct {
	Meta struct {
		Code int `json:"code"`
	} `json:"meta"`
	Response struct {
		Holidays []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"holidays"`
	} `json:"response"`
}

func (c *Client) fetchCountry(ctx context.Context, date time.Time, country string) ([]entity.Holiday, error) {
	var result []entity.Holiday

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, date, country)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("calendarific circuit breaker open, request rejected",
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("calendarific unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.([]entity.Holiday)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return result, nil
}

// doFetch performs the actual API call without retry or circuit breaker.
func (c *Client) doFetch(ctx context.Context, date time.Time, country string) ([]entity.Holiday, error) {
	params := url.Values{}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("country", country)
	params.Set("year", strconv.Itoa(date.Year()))
	params.Set("month", strconv.Itoa(int(date.Month())))
	params.Set("day", strconv.Itoa(date.Day()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendarific request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: "calendarific api error"}
	}

	var payload calendarificResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode calendarific response: %w", err)
	}
	if payload.Meta.Code != http.StatusOK {
		return nil, fmt.Errorf("calendarific returned meta code %d", payload.Meta.Code)
	}

	out := make([]entity.Holiday, 0, len(payload.Response.Holidays))
	for _, h := range payload.Response.Holidays {
		out = append(out, entity.Holiday{
			Name:        h.Name,
			Description: h.Description,
		})
	}
	return out, nil
}

func isFoodRelated(h entity.Holiday) bool {
	combined := strings.ToLower(h.Name + " " + h.Description)
	for _, kw := range foodKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

func filterFood(in []entity.Holiday) []entity.Holiday {
	out := make([]entity.Holiday, 0, len(in))
	for _, h := range in {
		if isFoodRelated(h) {
			out = append(out, h)
		}
	}
	return out
}

func dedupeByName(in []entity.Holiday) []entity.Holiday {
	seen := make(map[string]struct{}, len(in))
	out := make([]entity.Holiday, 0, len(in))
	for _, h := range in {
		key := strings.ToLower(h.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	return out
}
