package trellis

import (
	"context"
	"net/http"
)

// ListContent returns the content units of a source.
func (c *Client) ListContent(ctx context.Context, sourceID string) ([]Content, error) {
	var content []Content
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sources/"+sourceID+"/content", nil, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// DeleteContent removes one content unit from a source.
func (c *Client) DeleteContent(ctx context.Context, sourceID, contentID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/sources/"+sourceID+"/content/"+contentID, nil, nil)
}
