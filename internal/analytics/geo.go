package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heysheet/heysheet/internal/config"
)

// Location is the subset of the geolocation response the pipeline keeps.
type Location struct {
	IP      string `json:"ip"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// GeoLookup resolves an IP to a coarse location. Implementations must treat
// failures as non-fatal; callers default to an empty location.
type GeoLookup interface {
	Lookup(ctx context.Context, ip string) (*Location, error)
}

type httpGeoLookup struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPGeoLookup(cfg config.GeoConfig) GeoLookup {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil
	}
	return &httpGeoLookup{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: 3 * time.Second},
	}
}

func (g *httpGeoLookup) Lookup(ctx context.Context, ip string) (*Location, error) {
	target := fmt.Sprintf("%s/%s/json", g.endpoint, url.PathEscape(ip))
	if g.apiKey != "" {
		target += "?key=" + url.QueryEscape(g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo lookup status %d", resp.StatusCode)
	}

	var location Location
	if err := json.NewDecoder(resp.Body).Decode(&location); err != nil {
		return nil, err
	}
	if location.IP == "" {
		location.IP = ip
	}
	return &location, nil
}
