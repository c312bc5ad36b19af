package trellis

import (
	"encoding/json"
	"time"
)

// Agent is a configured agent hosted on the platform.
type Agent struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Model        string            `json:"model,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// CreateAgentRequest holds the fields for creating an agent.
type CreateAgentRequest struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Model        string            `json:"model,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// UpdateAgentRequest holds a partial agent update. Nil fields are left
// unchanged on the server.
type UpdateAgentRequest struct {
	Name         *string           `json:"name,omitempty"`
	Description  *string           `json:"description,omitempty"`
	Model        *string           `json:"model,omitempty"`
	Instructions *string           `json:"instructions,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// RunStatus is the lifecycle state of an agent run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is a final state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Run is the state of one agent execution at a point in time.
type Run struct {
	ID          string          `json:"id"`
	AgentID     string          `json:"agent_id"`
	Status      RunStatus       `json:"status"`
	Output      json.RawMessage `json:"output,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`

	// Raw is the exact server payload this Run was decoded from. It is set
	// on runs returned by [Client.StreamRun] so callers can reach
	// server-defined fields the typed struct does not model.
	Raw json.RawMessage `json:"-"`
}

// RunRequest describes one agent run.
type RunRequest struct {
	Input     string            `json:"input"`
	Variables map[string]string `json:"variables,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Source is a data source that can be attached to agents.
type Source struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateSourceRequest holds the fields for creating a source.
type CreateSourceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Content is one unit of ingested text belonging to a source.
type Content struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	FileID    string    `json:"file_id,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// File is metadata for a file uploaded into a source.
type File struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"source_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// HealthStatus is the server's health report.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
