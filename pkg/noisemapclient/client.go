// Package noisemapclient is a small Go client for the Noise-Map API,
// intended for analysis tooling that consumes the aggregate feature
// endpoint.
package noisemapclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/paulmach/orb/geojson"
)

// Client talks to a running Noise-Map server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8094".
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

// Health is the /health response body.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Layer is the API view of one registry entry.
type Layer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Partition string  `json:"partition"`
	Active    bool    `json:"active"`
	Opacity   float64 `json:"opacity"`
	Kind      string  `json:"kind"`
	Features  int     `json:"features"`
}

// GetHealth checks service health.
func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLayers returns every registry entry, uploaded partition first.
func (c *Client) ListLayers(ctx context.Context) ([]Layer, error) {
	var out struct {
		Layers []Layer `json:"layers"`
	}
	if err := c.get(ctx, "/api/v1/layers", &out); err != nil {
		return nil, err
	}
	return out.Layers, nil
}

// ActiveFeatures returns the union of all currently visible features.
func (c *Client) ActiveFeatures(ctx context.Context) (*geojson.FeatureCollection, error) {
	data, err := c.getRaw(ctx, "/api/v1/features/active")
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalFeatureCollection(data)
}

// SetActive toggles a layer's visibility.
func (c *Client) SetActive(ctx context.Context, partition, id string, active bool) error {
	path := fmt.Sprintf("/api/v1/layers/%s/%s/active", partition, id)
	return c.post(ctx, path, map[string]bool{"active": active})
}

// SetOpacity updates a layer's opacity.
func (c *Client) SetOpacity(ctx context.Context, partition, id string, opacity float64) error {
	path := fmt.Sprintf("/api/v1/layers/%s/%s/opacity", partition, id)
	return c.post(ctx, path, map[string]float64{"opacity": opacity})
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	data, err := c.getRaw(ctx, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: unexpected status %s", path, resp.Status)
	}
	return nil
}
