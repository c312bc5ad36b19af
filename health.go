package trellis

import (
	"context"
	"net/http"
)

// Health checks the server health.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
