// ABOUTME: Search source connector endpoints wrapper over the request pipeline
// ABOUTME: Covers connector CRUD plus the indexing trigger

package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MODSetter/SurfSense-sub002/driver"
	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/security"
)

const connectorsBasePath = "/api/v1/search-source-connectors/"

// ConnectorService exposes the search source connector endpoints.
type ConnectorService struct {
	pipeline  *Pipeline
	validator *security.RequestValidator
	logger    *slog.Logger
}

// NewConnectorService creates a connector service on top of the pipeline.
func NewConnectorService(pipeline *Pipeline, validator *security.RequestValidator, logger *slog.Logger) *ConnectorService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = security.NewRequestValidator()
	}

	return &ConnectorService{pipeline: pipeline, validator: validator, logger: logger}
}

// List returns all connectors of the current user.
func (s *ConnectorService) List(ctx context.Context) ([]models.SearchSourceConnector, error) {
	var connectors []models.SearchSourceConnector
	if err := s.pipeline.Get(ctx, connectorsBasePath, nil, &connectors); err != nil {
		return nil, err
	}

	s.logger.Debug("Listed connectors", "count", len(connectors))
	return connectors, nil
}

// Get returns one connector by ID.
func (s *ConnectorService) Get(ctx context.Context, id int) (*models.SearchSourceConnector, error) {
	var connector models.SearchSourceConnector
	if err := s.pipeline.Get(ctx, connectorItemPath(id), nil, &connector); err != nil {
		return nil, err
	}
	return &connector, nil
}

// Create registers a new connector and returns the stored record.
func (s *ConnectorService) Create(ctx context.Context, req *models.ConnectorCreateRequest) (*models.SearchSourceConnector, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var connector models.SearchSourceConnector
	if err := s.pipeline.Post(ctx, connectorsBasePath, req, &connector); err != nil {
		return nil, err
	}

	s.logger.Info("Connector registered",
		"connector_id", connector.ID,
		"connector_type", req.ConnectorType)
	return &connector, nil
}

// Update changes connector settings and returns the stored record.
func (s *ConnectorService) Update(ctx context.Context, id int, req *models.ConnectorUpdateRequest) (*models.SearchSourceConnector, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var connector models.SearchSourceConnector
	if err := s.pipeline.Put(ctx, connectorItemPath(id), req, &connector); err != nil {
		return nil, err
	}
	return &connector, nil
}

// Delete removes a connector.
func (s *ConnectorService) Delete(ctx context.Context, id int) error {
	return s.pipeline.Delete(ctx, connectorItemPath(id), nil)
}

// Index triggers content indexing for an indexable connector.
func (s *ConnectorService) Index(ctx context.Context, id, searchSpaceID int) error {
	query := url.Values{}
	if searchSpaceID > 0 {
		query.Set("search_space_id", strconv.Itoa(searchSpaceID))
	}

	req := &driver.APIRequest{
		Method: http.MethodPost,
		Path:   connectorItemPath(id) + "/index",
		Query:  query,
	}
	if err := s.pipeline.Do(ctx, req, nil); err != nil {
		return err
	}

	s.logger.Info("Connector indexing triggered", "connector_id", id, "search_space_id", searchSpaceID)
	return nil
}

func connectorItemPath(id int) string {
	return fmt.Sprintf("%s%d", connectorsBasePath, id)
}
