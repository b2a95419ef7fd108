// Package geocode resolves pickup addresses to coordinates.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/foodshare/internal/platform/timeouts"
	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/tidwall/gjson"
)

const (
	defaultUserAgent = "foodshare-donations/1"
	maxResponseBytes = 1 << 20
)

// Config selects the geocoder endpoint.
type Config struct {
	URL string `env:"FOODSHARE_GEOCODER_URL"`
}

// Nop never resolves an address.
type Nop struct{}

// Geocode returns no coordinates.
func (Nop) Geocode(context.Context, string) (*domain.Coordinates, error) {
	return nil, nil
}

// Client queries a Nominatim-compatible search endpoint.
type Client struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

// New returns a client for endpoint. A nil client uses a timeout-bounded
// default.
func New(endpoint string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: timeouts.Geocode}
	}
	return &Client{
		endpoint:  strings.TrimSpace(endpoint),
		userAgent: defaultUserAgent,
		client:    client,
	}
}

// Geocode returns the first match for address, or nil when nothing matches.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Geocode)
	defer cancel()

	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode returned %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read geocode response: %w", err)
	}
	return parse(body)
}

func parse(body []byte) (*domain.Coordinates, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode geocode response: invalid json")
	}
	first := gjson.GetBytes(body, "0")
	if !first.Exists() {
		return nil, nil
	}
	lat, lng := first.Get("lat"), first.Get("lon")
	if !lat.Exists() || !lng.Exists() {
		return nil, fmt.Errorf("decode geocode response: missing lat/lon")
	}
	// Nominatim encodes coordinates as strings; Float handles both forms.
	return &domain.Coordinates{Lat: lat.Float(), Lng: lng.Float()}, nil
}
