// ABOUTME: This file defines search source connector models
// ABOUTME: Connectors bind external data sources (Slack, Notion, search APIs) to a user

package models

import "time"

// ConnectorType enumerates the supported external data sources.
type ConnectorType string

const (
	ConnectorTypeSerperAPI       ConnectorType = "SERPER_API"
	ConnectorTypeTavilyAPI       ConnectorType = "TAVILY_API"
	ConnectorTypeSlackConnector  ConnectorType = "SLACK_CONNECTOR"
	ConnectorTypeNotionConnector ConnectorType = "NOTION_CONNECTOR"
	ConnectorTypeGithubConnector ConnectorType = "GITHUB_CONNECTOR"
	ConnectorTypeLinearConnector ConnectorType = "LINEAR_CONNECTOR"
)

// SearchSourceConnector represents one configured connector.
type SearchSourceConnector struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	ConnectorType ConnectorType  `json:"connector_type"`
	IsIndexable   bool           `json:"is_indexable"`
	LastIndexedAt *time.Time     `json:"last_indexed_at,omitempty"`
	Config        map[string]any `json:"config"`
	SearchSpaceID int            `json:"search_space_id"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ConnectorCreateRequest is the payload for registering a connector. Config
// content is connector-specific and validated server-side; the client only
// enforces its presence.
type ConnectorCreateRequest struct {
	Name          string         `json:"name" validate:"required,min=1,max=100"`
	ConnectorType ConnectorType  `json:"connector_type" validate:"required,connector_type"`
	Config        map[string]any `json:"config" validate:"required"`
	IsIndexable   bool           `json:"is_indexable"`
	SearchSpaceID int            `json:"search_space_id" validate:"required,gt=0"`
}

// ConnectorUpdateRequest is the payload for updating connector settings.
type ConnectorUpdateRequest struct {
	Name   string         `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Config map[string]any `json:"config,omitempty"`
}
