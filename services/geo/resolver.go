package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"coolie/models"

	"go.uber.org/zap"
)

// Resolver turns a coordinate pair into an address hierarchy.
type Resolver interface {
	Resolve(ctx context.Context, lat, lng float64) (models.AddressHierarchy, error)
}

// geocodeResponse mirrors the subset of the Google geocoding payload we read.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []addressComponent `json:"address_components"`
	} `json:"results"`
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

// GoogleResolver resolves coordinates with the Google Maps geocoding API.
type GoogleResolver struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Logger  *zap.Logger
}

// NewGoogleResolver builds a resolver against baseURL.
func NewGoogleResolver(baseURL, apiKey string, client *http.Client, logger *zap.Logger) *GoogleResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &GoogleResolver{BaseURL: baseURL, APIKey: apiKey, Client: client, Logger: logger}
}

// ValidCoordinates reports whether lat/lng is a valid pair.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Resolve performs a single reverse-geocode call. There is no internal retry.
func (g *GoogleResolver) Resolve(ctx context.Context, lat, lng float64) (models.AddressHierarchy, error) {
	if !ValidCoordinates(lat, lng) {
		return models.AddressHierarchy{}, fmt.Errorf("%w: %f,%f", ErrInvalidCoordinates, lat, lng)
	}

	q := url.Values{}
	q.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("key", g.APIKey)
	reqURL := g.BaseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.AddressHierarchy{}, &GeocodeError{Lat: lat, Lng: lng, Err: err}
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		g.Logger.Error("GeoResolver: geocode request failed", zap.Error(err))
		return models.AddressHierarchy{}, &GeocodeError{Lat: lat, Lng: lng, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.Logger.Error("GeoResolver: geocode API returned non-OK status", zap.Int("status", resp.StatusCode))
		return models.AddressHierarchy{}, &GeocodeError{Lat: lat, Lng: lng, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.AddressHierarchy{}, &GeocodeError{Lat: lat, Lng: lng, Err: fmt.Errorf("decode: %w", err)}
	}
	if len(payload.Results) == 0 {
		g.Logger.Warn("GeoResolver: no results", zap.Float64("lat", lat), zap.Float64("lng", lng), zap.String("status", payload.Status))
		return models.AddressHierarchy{}, &GeocodeError{Lat: lat, Lng: lng, Err: ErrNoGeocodeResult}
	}

	h := hierarchyFromComponents(payload.Results[0].AddressComponents)
	g.Logger.Debug("GeoResolver: resolved", zap.Any("location", h))
	return h, nil
}

// hierarchyFromComponents extracts the admin hierarchy from geocoder components.
// Components the geocoder did not return are set to models.NotFound.
func hierarchyFromComponents(components []addressComponent) models.AddressHierarchy {
	var h models.AddressHierarchy
	for _, c := range components {
		for _, t := range c.Types {
			switch t {
			case "postal_code":
				h.PostalCode = c.LongName
			case "administrative_area_level_3":
				h.AdminLevel3 = c.LongName
			case "administrative_area_level_2":
				h.AdminLevel2 = c.LongName
			case "administrative_area_level_1":
				h.AdminLevel1 = c.LongName
			case "locality":
				h.Locality = c.LongName
			}
		}
	}
	for _, f := range []*string{&h.PostalCode, &h.Locality, &h.AdminLevel3, &h.AdminLevel2, &h.AdminLevel1} {
		if *f == "" {
			*f = models.NotFound
		}
	}
	return h
}
