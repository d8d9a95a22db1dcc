package nominatim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/bryanwahyu/aarogyam/internal/domain/hospital"
)

// Client implements hospital.Geocoder against an OpenStreetMap Nominatim
// instance. Nominatim rejects requests without a User-Agent.
type Client struct {
	BaseURL string
	http    *resty.Client
}

func New(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), http: c}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *Client) Geocode(ctx context.Context, q string) (domain.Coordinates, error) {
	var places []place
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{"q": q, "format": "json", "limit": "1"}).
		SetResult(&places).
		Get(c.BaseURL + "/search")
	if err != nil {
		return domain.Coordinates{}, err
	}
	if resp.IsError() {
		return domain.Coordinates{}, fmt.Errorf("nominatim search: %s; body: %s", resp.Status(), resp.String())
	}
	if len(places) == 0 {
		return domain.Coordinates{}, fmt.Errorf("%w: no geocoding match for %q", domain.ErrNotFound, q)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim lat %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim lon %q: %w", places[0].Lon, err)
	}
	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}

func (c *Client) Reverse(ctx context.Context, at domain.Coordinates) (domain.Address, error) {
	var out struct {
		Address map[string]string `json:"address"`
	}
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":             strconv.FormatFloat(at.Lat, 'f', -1, 64),
			"lon":             strconv.FormatFloat(at.Lon, 'f', -1, 64),
			"format":          "json",
			"accept-language": "en",
		}).
		SetResult(&out).
		Get(c.BaseURL + "/reverse")
	if err != nil {
		return domain.Address{}, err
	}
	if resp.IsError() {
		return domain.Address{}, fmt.Errorf("nominatim reverse: %s; body: %s", resp.Status(), resp.String())
	}
	return domain.Address{Suburb: out.Address["suburb"]}, nil
}

// Status calls the /status endpoint, which answers {"status":0,"message":"OK"}
// when the instance can serve lookups.
func (c *Client) Status(ctx context.Context) error {
	var out struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("format", "json").
		SetResult(&out).
		Get(c.BaseURL + "/status")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("nominatim status: %s", resp.Status())
	}
	if out.Status != 0 {
		return fmt.Errorf("nominatim status %d: %s", out.Status, out.Message)
	}
	return nil
}
