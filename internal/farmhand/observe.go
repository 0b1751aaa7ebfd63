// Package farmhand implements an autonomous player.
// It observes the farm via the API, decides on the next action with fixed
// rules, and acts via the intent endpoint.
package farmhand

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/hollowfarm/internal/catalog"
	"github.com/talgya/hollowfarm/internal/farm"
)

// Observation holds all data collected during an observation cycle.
type Observation struct {
	State   farm.Snapshot `json:"state"`
	Catalog CatalogData   `json:"catalog"`
	Market  MarketData    `json:"market"`
}

// CatalogData mirrors GET /api/v1/catalog.
type CatalogData struct {
	Level   int                   `json:"level"`
	Items   []CatalogItem         `json:"items"`
	Recipes []catalog.RecipeEntry `json:"recipes"`
}

// CatalogItem is a catalog entry with its lock flag.
type CatalogItem struct {
	catalog.Item
	Locked bool `json:"locked"`
}

// MarketData mirrors GET /api/v1/market.
type MarketData struct {
	Gold        int                  `json:"gold"`
	Buy         []farm.MarketEntry   `json:"buy"`
	Sell        farm.Inventory       `json:"sell"`
	Plantable   farm.Inventory       `json:"plantable"`
	Processable []farm.ProcessOption `json:"processable"`
}

// Item looks up a catalog entry by ID.
func (o *Observation) Item(id string) (CatalogItem, bool) {
	for _, it := range o.Catalog.Items {
		if it.ID == id {
			return it, true
		}
	}
	return CatalogItem{}, false
}

// Observer fetches farm state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Observe fetches state, catalog and market and returns an Observation.
func (o *Observer) Observe() (*Observation, error) {
	obs := &Observation{}

	if err := o.fetchJSON("/api/v1/state", &obs.State); err != nil {
		return nil, fmt.Errorf("fetch state: %w", err)
	}
	if err := o.fetchJSON("/api/v1/catalog", &obs.Catalog); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if err := o.fetchJSON("/api/v1/market", &obs.Market); err != nil {
		return nil, fmt.Errorf("fetch market: %w", err)
	}

	return obs, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
