package trellis

import (
	"context"
	"net/http"
)

// CreateRun starts an agent run without streaming. Poll [Client.GetRun] or
// use [Client.StreamRun] to follow its progress.
func (c *Client) CreateRun(ctx context.Context, agentID string, req RunRequest) (*Run, error) {
	var run Run
	if err := c.doJSON(ctx, http.MethodPost, "/v1/agents/"+agentID+"/runs", req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the runs of an agent.
func (c *Client) ListRuns(ctx context.Context, agentID string) ([]Run, error) {
	var runs []Run
	if err := c.doJSON(ctx, http.MethodGet, "/v1/agents/"+agentID+"/runs", nil, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun retrieves a run by ID.
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	if err := c.doJSON(ctx, http.MethodGet, "/v1/runs/"+runID, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// CancelRun requests cancellation of a run and returns its updated state.
func (c *Client) CancelRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	if err := c.doJSON(ctx, http.MethodPost, "/v1/runs/"+runID+"/cancel", nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetAgentRun retrieves a run through the older agent-scoped endpoint.
//
// Deprecated: run IDs are globally unique; use [Client.GetRun].
func (c *Client) GetAgentRun(ctx context.Context, agentID, runID string) (*Run, error) {
	var run Run
	if err := c.doJSON(ctx, http.MethodGet, "/v1/agents/"+agentID+"/runs/"+runID, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// CancelAgentRun cancels a run through the older agent-scoped endpoint.
//
// Deprecated: run IDs are globally unique; use [Client.CancelRun].
func (c *Client) CancelAgentRun(ctx context.Context, agentID, runID string) (*Run, error) {
	var run Run
	if err := c.doJSON(ctx, http.MethodPost, "/v1/agents/"+agentID+"/runs/"+runID+"/cancel", nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
