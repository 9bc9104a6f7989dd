package analytics

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type geoStub struct {
	location *Location
	err      error
	lookups  []string
}

func (g *geoStub) Lookup(ctx context.Context, ip string) (*Location, error) {
	g.lookups = append(g.lookups, ip)
	return g.location, g.err
}

const chromeMacUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestCollectDerivesClientMetadata(t *testing.T) {
	collector := NewCollector(zap.NewNop(), nil)

	req := httptest.NewRequest("POST", "/s/contact?utm_source=newsletter&utm_campaign=june", nil)
	req.Header.Set("User-Agent", chromeMacUA)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,fr;q=0.8")
	req.Header.Set("Referer", "https://example.com/pricing")

	record, utm := collector.Collect(context.Background(), req)

	assert.Equal(t, "203.0.113.7", record.IP)
	assert.Equal(t, "Chrome", record.Browser)
	assert.Equal(t, "desktop", record.Device)
	assert.Equal(t, "en-US", record.Language)
	assert.Equal(t, "https://example.com/pricing", record.Referrer)
	assert.False(t, record.Mobile)

	assert.Equal(t, "newsletter", utm.Source)
	assert.Equal(t, "june", utm.Campaign)
	assert.Empty(t, utm.Medium)
}

func TestCollectFallsBackToRemoteAddr(t *testing.T) {
	collector := NewCollector(zap.NewNop(), nil)

	req := httptest.NewRequest("POST", "/s/contact", nil)
	req.RemoteAddr = "198.51.100.4:51234"

	record, _ := collector.Collect(context.Background(), req)
	assert.Equal(t, "198.51.100.4", record.IP)
}

func TestCollectMobileHint(t *testing.T) {
	collector := NewCollector(zap.NewNop(), nil)

	req := httptest.NewRequest("POST", "/s/contact", nil)
	req.Header.Set("Sec-CH-UA-Mobile", "?1")

	record, _ := collector.Collect(context.Background(), req)
	assert.True(t, record.Mobile)
}

func TestCollectGeoEnrichment(t *testing.T) {
	geo := &geoStub{location: &Location{Country: "NL", City: "Amsterdam"}}
	collector := NewCollector(zap.NewNop(), geo)

	req := httptest.NewRequest("POST", "/s/contact", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	record, _ := collector.Collect(context.Background(), req)
	assert.Equal(t, []string{"203.0.113.7"}, geo.lookups)
	assert.Equal(t, "NL", record.Country)
	assert.Equal(t, "Amsterdam", record.City)
}

func TestCollectGeoFailureIsNonFatal(t *testing.T) {
	geo := &geoStub{err: errors.New("upstream down")}
	collector := NewCollector(zap.NewNop(), geo)

	req := httptest.NewRequest("POST", "/s/contact", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	record, _ := collector.Collect(context.Background(), req)
	assert.Empty(t, record.Country)
	assert.NotEmpty(t, record.IP)
}

func TestRecordToMapOmitsEmpty(t *testing.T) {
	m := Record{IP: "1.2.3.4", Mobile: true}.ToMap()
	assert.Equal(t, map[string]any{"ip": "1.2.3.4", "mobile": true}, m)
}
