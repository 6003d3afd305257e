package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/skilledlink/skilledlink-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.bigdatacloud.net/data"
	reverseGeocodePath         = "reverse-geocode-client"
	requestBodyReadLimit int64 = 1024
)

// Client wraps the BigDataCloud reverse-geocoding API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the reverse-geocoding client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client
}

// Place is the normalized reverse-geocode result. Missing fields resolve to
// UnknownComponent so formatting can skip them.
type Place struct {
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Formatted string `json:"formatted"`
}

// ReverseGeocode resolves coordinates into a Place. The upstream endpoint is
// unauthenticated, so no API key is threaded through.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "geocode client not configured")
	}
	if lat < -90 || lat > 90 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "latitude out of range")
	}
	if lon < -180 || lon > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "longitude out of range")
	}

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("localityLanguage", "en")

	endpoint := fmt.Sprintf("%s/%s?%s", strings.TrimRight(c.baseURL, "/"), reverseGeocodePath, query.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build reverse geocode request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute reverse geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "reverse geocode request failed")
	}

	var apiResp struct {
		City                         string `json:"city"`
		Locality                     string `json:"locality"`
		PrincipalSubdivision         string `json:"principalSubdivision"`
		PrincipalSubdivisionLocality string `json:"principalSubdivisionLocality"`
		CountryName                  string `json:"countryName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode reverse geocode response")
	}

	place := &Place{
		City:    firstNonEmpty(apiResp.City, apiResp.Locality, apiResp.PrincipalSubdivisionLocality),
		State:   firstNonEmpty(apiResp.PrincipalSubdivision),
		Country: firstNonEmpty(apiResp.CountryName),
	}
	place.Formatted = FormatAddress(place.City, place.State, place.Country)
	return place, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return UnknownComponent
}
