package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

type OverpassClient struct {
	*BaseClient
	endpoint string
}

type OverpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OverpassElement is a node, way or relation. Nodes carry Lat/Lon directly;
// ways and relations only carry Center when the query ends in "out center".
type OverpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *OverpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

// Position returns the element's own coordinates, falling back to its center.
func (e OverpassElement) Position() (lat, lon float64, ok bool) {
	if e.Lat != nil && e.Lon != nil {
		return *e.Lat, *e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
	Remark   string            `json:"remark,omitempty"`
}

func NewOverpassClient(endpoint string, config ClientConfig, logger *zap.Logger) *OverpassClient {
	return &OverpassClient{
		BaseClient: NewBaseClient("overpass", config, logger),
		endpoint:   endpoint,
	}
}

// Query runs an Overpass QL query that requests JSON output.
func (c *OverpassClient) Query(ctx context.Context, query string) ([]OverpassElement, error) {
	params := url.Values{}
	params.Set("data", query)

	data, err := c.Get(ctx, c.endpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	var response OverpassResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse overpass response: %w", err)
	}

	// Overpass reports server-side timeouts as a remark on an otherwise valid
	// payload. Without any elements the remark is the only answer we got.
	if response.Remark != "" {
		c.logger.Warn("Overpass returned a remark",
			zap.String("remark", response.Remark),
			zap.Int("elements", len(response.Elements)))
		if len(response.Elements) == 0 {
			return nil, fmt.Errorf("%w: overpass remark: %s", ErrUpstream, response.Remark)
		}
	}

	return response.Elements, nil
}
