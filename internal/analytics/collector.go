// Package analytics derives the per-submission analytics snapshot from
// request metadata.
package analytics

import (
	"context"
	"net/http"
	"strings"

	"github.com/mileusna/useragent"
	"go.uber.org/zap"
)

// Record is the flat analytics snapshot merged into a submission.
type Record struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Device    string `json:"device,omitempty"`
	Browser   string `json:"browser,omitempty"`
	OS        string `json:"os,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Language  string `json:"language,omitempty"`
	Mobile    bool   `json:"mobile,omitempty"`
}

// UTM holds the five campaign parameters lifted from the query string.
type UTM struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Term     string `json:"utm_term,omitempty"`
	Content  string `json:"utm_content,omitempty"`
}

type Collector struct {
	log *zap.Logger
	geo GeoLookup
}

func NewCollector(log *zap.Logger, geo GeoLookup) *Collector {
	return &Collector{
		log: log.Named("analytics.collector"),
		geo: geo,
	}
}

// Collect builds the analytics record for a request. The geolocation lookup
// is best effort and never fails the submission.
func (c *Collector) Collect(ctx context.Context, r *http.Request) (Record, UTM) {
	record := Record{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		Language:  primaryLanguage(r.Header.Get("Accept-Language")),
		Mobile:    r.Header.Get("Sec-CH-UA-Mobile") == "?1",
	}

	if ua := useragent.Parse(record.UserAgent); ua.Name != "" {
		record.Browser = ua.Name
		record.OS = ua.OS
		record.Device = deviceKind(ua)
		if ua.Mobile {
			record.Mobile = true
		}
	}

	if c.geo != nil && record.IP != "" {
		location, err := c.geo.Lookup(ctx, record.IP)
		if err != nil {
			c.log.Debug("geo lookup failed", zap.String("ip", record.IP), zap.Error(err))
		} else if location != nil {
			record.Country = location.Country
			record.City = location.City
		}
	}

	query := r.URL.Query()
	utm := UTM{
		Source:   query.Get("utm_source"),
		Medium:   query.Get("utm_medium"),
		Campaign: query.Get("utm_campaign"),
		Term:     query.Get("utm_term"),
		Content:  query.Get("utm_content"),
	}

	return record, utm
}

// ToMap flattens the record for storage in the submission's JSON column.
func (r Record) ToMap() map[string]any {
	out := map[string]any{}
	put := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	put("ip", r.IP)
	put("user_agent", r.UserAgent)
	put("device", r.Device)
	put("browser", r.Browser)
	put("os", r.OS)
	put("country", r.Country)
	put("city", r.City)
	put("referrer", r.Referrer)
	put("language", r.Language)
	if r.Mobile {
		out["mobile"] = true
	}
	return out
}

// ToMap flattens the UTM parameters, omitting empty ones.
func (u UTM) ToMap() map[string]any {
	out := map[string]any{}
	put := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	put("utm_source", u.Source)
	put("utm_medium", u.Medium)
	put("utm_campaign", u.Campaign)
	put("utm_term", u.Term)
	put("utm_content", u.Content)
	return out
}

func clientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return strings.Trim(host, "[]")
}

func primaryLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return ""
	}
	first := strings.Split(acceptLanguage, ",")[0]
	return strings.TrimSpace(strings.Split(first, ";")[0])
}

func deviceKind(ua useragent.UserAgent) string {
	switch {
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	case ua.Bot:
		return "bot"
	default:
		return "desktop"
	}
}
