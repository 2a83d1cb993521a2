// ABOUTME: Document endpoints wrapper over the request pipeline
// ABOUTME: Validates create/update payloads before dispatch

package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/MODSetter/SurfSense-sub002/models"
	"github.com/MODSetter/SurfSense-sub002/security"
)

const documentsBasePath = "/api/v1/documents/"

// DocumentService exposes the document resource endpoints.
type DocumentService struct {
	pipeline  *Pipeline
	validator *security.RequestValidator
	logger    *slog.Logger
}

// NewDocumentService creates a document service on top of the pipeline.
func NewDocumentService(pipeline *Pipeline, validator *security.RequestValidator, logger *slog.Logger) *DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = security.NewRequestValidator()
	}

	return &DocumentService{pipeline: pipeline, validator: validator, logger: logger}
}

// List returns the documents of a search space. A non-positive searchSpaceID
// lists across all spaces.
func (s *DocumentService) List(ctx context.Context, searchSpaceID int) ([]models.Document, error) {
	query := url.Values{}
	if searchSpaceID > 0 {
		query.Set("search_space_id", strconv.Itoa(searchSpaceID))
	}

	var documents []models.Document
	if err := s.pipeline.Get(ctx, documentsBasePath, query, &documents); err != nil {
		return nil, err
	}

	s.logger.Debug("Listed documents", "count", len(documents), "search_space_id", searchSpaceID)
	return documents, nil
}

// Get returns one document by ID.
func (s *DocumentService) Get(ctx context.Context, id int) (*models.Document, error) {
	var document models.Document
	if err := s.pipeline.Get(ctx, documentItemPath(id), nil, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

// Create submits new document content for ingestion. The backend processes
// the content asynchronously, so nothing is returned beyond acceptance.
func (s *DocumentService) Create(ctx context.Context, req *models.DocumentCreateRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if err := s.pipeline.Post(ctx, documentsBasePath, req, nil); err != nil {
		return err
	}

	s.logger.Info("Document ingestion submitted",
		"document_type", req.DocumentType,
		"items", len(req.Content),
		"search_space_id", req.SearchSpaceID)
	return nil
}

// Update renames or re-types a document.
func (s *DocumentService) Update(ctx context.Context, id int, req *models.DocumentUpdateRequest) (*models.Document, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var document models.Document
	if err := s.pipeline.Put(ctx, documentItemPath(id), req, &document); err != nil {
		return nil, err
	}
	return &document, nil
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, id int) error {
	return s.pipeline.Delete(ctx, documentItemPath(id), nil)
}

func documentItemPath(id int) string {
	return fmt.Sprintf("%s%d", documentsBasePath, id)
}
