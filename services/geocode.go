package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// Geocoder resolves coordinates to a display address via Nominatim.
// Nominatim's usage policy caps anonymous clients at one request per
// second, so calls go through a token bucket, and a circuit breaker
// keeps a flapping upstream from stalling report submissions. Every
// failure degrades to an empty string; a report is never blocked on
// its address.
type Geocoder struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	baseURL string
	log     zerolog.Logger
}

func NewGeocoder(log zerolog.Logger) *Geocoder {
	baseURL := os.Getenv("NOMINATIM_URL")
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Geocoder{
		client:  &http.Client{Timeout: 8 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		breaker: breaker,
		baseURL: baseURL,
		log:     log,
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode returns the address for the coordinates, or "" on any
// failure.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	if err := g.limiter.Wait(ctx); err != nil {
		return ""
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.fetch(ctx, lat, lon)
	})
	if err != nil {
		g.log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("reverse geocoding failed")
		return ""
	}
	return result.(string)
}

func (g *Geocoder) fetch(ctx context.Context, lat, lon float64) (string, error) {
	endpoint := fmt.Sprintf("%s/reverse?format=json&lat=%s&lon=%s&accept-language=sq",
		g.baseURL,
		url.QueryEscape(fmt.Sprintf("%f", lat)),
		url.QueryEscape(fmt.Sprintf("%f", lon)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "FixItApp/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("nominatim returned %s", resp.Status)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.DisplayName, nil
}
