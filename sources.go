package trellis

import (
	"context"
	"net/http"
)

// ListSources returns all sources.
func (c *Client) ListSources(ctx context.Context) ([]Source, error) {
	var sources []Source
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sources", nil, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// GetSource retrieves a source by ID.
func (c *Client) GetSource(ctx context.Context, sourceID string) (*Source, error) {
	var source Source
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sources/"+sourceID, nil, &source); err != nil {
		return nil, err
	}
	return &source, nil
}

// CreateSource creates a new source.
func (c *Client) CreateSource(ctx context.Context, req CreateSourceRequest) (*Source, error) {
	var source Source
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sources", req, &source); err != nil {
		return nil, err
	}
	return &source, nil
}

// DeleteSource deletes a source and all of its content.
func (c *Client) DeleteSource(ctx context.Context, sourceID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/sources/"+sourceID, nil, nil)
}

// AttachSource makes a source available to an agent.
func (c *Client) AttachSource(ctx context.Context, agentID, sourceID string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/agents/"+agentID+"/sources/"+sourceID, nil, nil)
}

// DetachSource removes a source from an agent.
func (c *Client) DetachSource(ctx context.Context, agentID, sourceID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/agents/"+agentID+"/sources/"+sourceID, nil, nil)
}
