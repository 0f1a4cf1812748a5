package holidays

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"morning-post/internal/domain/entity"
)

func testDate() time.Time {
	return time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
}

func calendarificPayload(names ...string) map[string]interface{} {
	holidays := make([]map[string]string, 0, len(names))
	for _, n := range names {
		holidays = append(holidays, map[string]string{"name": n, "description": ""})
	}
	return map[string]interface{}{
		"meta":     map[string]int{"code": 200},
		"response": map[string]interface{}{"holidays": holidays},
	}
}

func newTestClient(serverURL string, countries ...string) *Client {
	return NewClient(&Config{
		APIKey:    "test-key",
		BaseURL:   serverURL,
		Countries: countries,
		Timeout:   2 * time.Second,
	})
}

func TestClient_ForDate(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		country := r.URL.Query().Get("country")
		requests = append(requests, country)

		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.Query().Get("api_key"))
		}
		if r.URL.Query().Get("year") != "2025" || r.URL.Query().Get("month") != "10" || r.URL.Query().Get("day") != "1" {
			t.Errorf("unexpected date params: %v", r.URL.Query())
		}

		var payload map[string]interface{}
		switch country {
		case "RU":
			payload = calendarificPayload("День Сухопутных войск", "Международный день кофе")
		case "US":
			payload = calendarificPayload("National Homemade Cookies Day", "Model T Day")
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "RU", "US")
	got, err := client.ForDate(context.Background(), testDate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 API calls, got %d", len(requests))
	}

	// The first country keeps everything; the second is food-filtered,
	// so "Model T Day" must be gone.
	names := make([]string, 0, len(got))
	for _, h := range got {
		names = append(names, h.Name)
	}
	want := []string{"National Homemade Cookies Day", "Международный день кофе", "День Сухопутных войск"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestClient_ForDate_CachesPerDate(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(calendarificPayload("Pizza Day"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "RU")

	for i := 0; i < 3; i++ {
		if _, err := client.ForDate(context.Background(), testDate()); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 API call with caching, got %d", calls)
	}

	// A new date evicts the old entry and fetches again.
	if _, err := client.ForDate(context.Background(), testDate().AddDate(0, 0, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 API calls after date change, got %d", calls)
	}
}

func TestClient_ForDate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "RU")
	_, err := client.ForDate(context.Background(), testDate())
	if err == nil {
		t.Fatal("expected error on API failure")
	}
}

func TestClient_ForDate_MetaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"meta": map[string]int{"code": 401},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, "RU")
	_, err := client.ForDate(context.Background(), testDate())
	if err == nil {
		t.Fatal("expected error on meta code failure")
	}
}

func TestIsFoodRelated(t *testing.T) {
	tests := []struct {
		name    string
		holiday entity.Holiday
		want    bool
	}{
		{
			name:    "english food holiday",
			holiday: entity.Holiday{Name: "National Coffee Day"},
			want:    true,
		},
		{
			name:    "russian food holiday",
			holiday: entity.Holiday{Name: "День пирога"},
			want:    true,
		},
		{
			name:    "keyword in description only",
			holiday: entity.Holiday{Name: "Harvest Festival", Description: "Celebrating bread and wine"},
			want:    true,
		},
		{
			name:    "unrelated holiday",
			holiday: entity.Holiday{Name: "Independence Day"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFoodRelated(tt.holiday); got != tt.want {
				t.Errorf("isFoodRelated(%q) = %v, want %v", tt.holiday.Name, got, tt.want)
			}
		})
	}
}

func TestDedupeByName(t *testing.T) {
	in := []entity.Holiday{
		{Name: "Coffee Day"},
		{Name: "coffee day"},
		{Name: "Tea Day"},
	}
	got := dedupeByName(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 holidays after dedupe, got %d", len(got))
	}
	if got[0].Name != "Coffee Day" || got[1].Name != "Tea Day" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				APIKey:    "key",
				BaseURL:   DefaultBaseURL,
				Countries: []string{"RU", "US"},
				Timeout:   10 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "missing api key",
			cfg: Config{
				BaseURL:   DefaultBaseURL,
				Countries: []string{"RU"},
				Timeout:   10 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "bad country code",
			cfg: Config{
				APIKey:    "key",
				BaseURL:   DefaultBaseURL,
				Countries: []string{"RUS"},
				Timeout:   10 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "zero timeout",
			cfg: Config{
				APIKey:    "key",
				BaseURL:   DefaultBaseURL,
				Countries: []string{"RU"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
