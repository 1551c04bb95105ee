// Package mapbox wraps the Mapbox Search Box API (suggest + retrieve) to
// find grocery-type stores near a free-text location. The client is
// stateless: one SearchNearbyStores call performs one suggest request and
// one retrieve request per suggestion.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nourish-labs/mealplan-mcp/config"
)

const (
	defaultSuggestURL  = "https://api.mapbox.com/search/searchbox/v1/suggest"
	defaultRetrieveURL = "https://api.mapbox.com/search/searchbox/v1/retrieve"
)

// storeKeywords marks obviously store-like names. Results matching a
// keyword are preferred; when none match, everything found is returned.
var storeKeywords = []string{
	"market", "supermarket", "hypermarket", "grocery", "mart", "store",
	"coop", "co-op", "carrefour", "sultan", "lulu",
	"city centre", "city center", "saveco",
}

type Client struct {
	token       string
	country     string
	categories  string
	limit       int
	httpClient  *http.Client
	logger      *slog.Logger
	suggestURL  string
	retrieveURL string
}

func NewClient(cfg config.MapboxConfig, logger *slog.Logger) (*Client, error) {
	token := cfg.Token()
	if token == "" {
		return nil, fmt.Errorf("mapbox access token is not configured (set MAPBOX_ACCESS_TOKEN)")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		token:      token,
		country:    cfg.Country,
		categories: cfg.Categories,
		limit:      cfg.Limit,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger:      logger,
		suggestURL:  defaultSuggestURL,
		retrieveURL: defaultRetrieveURL,
	}, nil
}

// Store is one store-like POI returned to the agent.
type Store struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Longitude      float64  `json:"longitude"`
	Latitude       float64  `json:"latitude"`
	DistanceM      float64  `json:"distance_m,omitempty"`
	MapboxID       string   `json:"mapbox_id"`
	FeatureType    string   `json:"feature_type,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	Brand          string   `json:"brand,omitempty"`
	Country        string   `json:"country,omitempty"`
	PlaceFormatted string   `json:"place_formatted,omitempty"`
	FullAddress    string   `json:"full_address,omitempty"`
}

// SearchResult is the search_nearby_stores tool response. A failed lookup
// keeps Features empty and sets Error instead of failing the tool call, so
// the agent can rephrase and retry.
type SearchResult struct {
	Query    string  `json:"query"`
	Features []Store `json:"features"`
	Error    string  `json:"error,omitempty"`
}

type suggestResponse struct {
	Suggestions []struct {
		MapboxID string `json:"mapbox_id"`
	} `json:"suggestions"`
}

type retrieveResponse struct {
	Features []struct {
		Name     string `json:"name"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Name           string   `json:"name"`
			FullAddress    string   `json:"full_address"`
			PlaceFormatted string   `json:"place_formatted"`
			Address        string   `json:"address"`
			Country        string   `json:"country"`
			Distance       float64  `json:"distance"`
			FeatureType    string   `json:"feature_type"`
			Brand          []string `json:"brand"`
			Categories     []string `json:"categories"`
			POICategory    []string `json:"poi_category"`
		} `json:"properties"`
	} `json:"features"`
}

// SearchNearbyStores resolves a free-text query to store-like POIs. A
// session token ties the suggest and retrieve requests together for
// Mapbox billing. limit <= 0 uses the configured default.
func (c *Client) SearchNearbyStores(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = c.limit
	}
	sessionToken := uuid.NewString()

	suggestions, err := c.suggest(ctx, query, sessionToken, limit)
	if err != nil {
		c.logger.Error("mapbox suggest failed", "query", query, "error", err)
		return &SearchResult{
			Query:    query,
			Features: []Store{},
			Error:    "Store lookup failed. Try another area or wording.",
		}, nil
	}

	stores := []Store{}
	for _, suggestion := range suggestions.Suggestions {
		if suggestion.MapboxID == "" {
			continue
		}

		store, err := c.retrieve(ctx, suggestion.MapboxID, sessionToken)
		if err != nil {
			c.logger.Error("mapbox retrieve failed", "mapbox_id", suggestion.MapboxID, "query", query, "error", err)
			continue
		}
		if store == nil {
			continue
		}

		if c.country != "" && store.Country != "" && !strings.EqualFold(store.Country, c.country) {
			continue
		}

		stores = append(stores, *store)
	}

	filtered := []Store{}
	for _, store := range stores {
		if isStoreName(store.Name) {
			filtered = append(filtered, store)
		}
	}
	if len(filtered) > 0 {
		stores = filtered
	}

	c.logger.Info("store search completed", "query", query, "results", len(stores))
	return &SearchResult{Query: query, Features: stores}, nil
}

func (c *Client) suggest(ctx context.Context, query, sessionToken string, limit int) (*suggestResponse, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("access_token", c.token)
	values.Set("session_token", sessionToken)
	values.Set("poi_category", c.categories)
	if c.country != "" {
		values.Set("country", c.country)
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}

	var out suggestResponse
	if err := c.getJSON(ctx, c.suggestURL+"?"+values.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) retrieve(ctx context.Context, mapboxID, sessionToken string) (*Store, error) {
	values := url.Values{}
	values.Set("access_token", c.token)
	values.Set("session_token", sessionToken)

	var out retrieveResponse
	endpoint := c.retrieveURL + "/" + url.PathEscape(mapboxID) + "?" + values.Encode()
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	if len(out.Features) == 0 {
		return nil, nil
	}

	feature := out.Features[0]
	props := feature.Properties

	name := feature.Name
	if name == "" {
		name = props.Name
	}

	address := props.FullAddress
	if address == "" {
		address = props.PlaceFormatted
	}
	if address == "" {
		address = props.Address
	}

	categories := props.Categories
	if len(categories) == 0 {
		categories = props.POICategory
	}

	brand := ""
	if len(props.Brand) > 0 {
		brand = props.Brand[0]
	}

	store := Store{
		Name:           name,
		Address:        address,
		DistanceM:      props.Distance,
		MapboxID:       mapboxID,
		FeatureType:    props.FeatureType,
		Categories:     categories,
		Brand:          brand,
		Country:        props.Country,
		PlaceFormatted: props.PlaceFormatted,
		FullAddress:    props.FullAddress,
	}
	if len(feature.Geometry.Coordinates) >= 2 {
		store.Longitude = feature.Geometry.Coordinates[0]
		store.Latitude = feature.Geometry.Coordinates[1]
	}

	return &store, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func isStoreName(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range storeKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
