// ABOUTME: Podcast endpoints wrapper over the request pipeline
// ABOUTME: Generation runs server-side; the client submits and polls

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

const podcastsBasePath = "/api/v1/podcasts/"

// PodcastService exposes the generated audio summary endpoints.
type PodcastService struct {
	pipeline  *Pipeline
	validator *security.RequestValidator
	logger    *slog.Logger
}

// NewPodcastService creates a podcast service on top of the pipeline.
func NewPodcastService(pipeline *Pipeline, validator *security.RequestValidator, logger *slog.Logger) *PodcastService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = security.NewRequestValidator()
	}

	return &PodcastService{pipeline: pipeline, validator: validator, logger: logger}
}

// List returns the podcasts of a search space. A non-positive searchSpaceID
// lists across all spaces.
func (s *PodcastService) List(ctx context.Context, searchSpaceID int) ([]models.Podcast, error) {
	query := url.Values{}
	if searchSpaceID > 0 {
		query.Set("search_space_id", strconv.Itoa(searchSpaceID))
	}

	var podcasts []models.Podcast
	if err := s.pipeline.Get(ctx, podcastsBasePath, query, &podcasts); err != nil {
		return nil, err
	}

	s.logger.Debug("Listed podcasts", "count", len(podcasts), "search_space_id", searchSpaceID)
	return podcasts, nil
}

// Get returns one podcast by ID.
func (s *PodcastService) Get(ctx context.Context, id int) (*models.Podcast, error) {
	var podcast models.Podcast
	if err := s.pipeline.Get(ctx, podcastItemPath(id), nil, &podcast); err != nil {
		return nil, err
	}
	return &podcast, nil
}

// Generate asks the backend to produce podcasts from the given chats. The
// audio is rendered asynchronously; poll List until IsGenerated flips.
func (s *PodcastService) Generate(ctx context.Context, req *models.PodcastGenerateRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	if err := s.pipeline.Post(ctx, podcastsBasePath+"generate/", req, nil); err != nil {
		return err
	}

	s.logger.Info("Podcast generation submitted",
		"chat_ids", req.ChatIDs,
		"search_space_id", req.SearchSpaceID)
	return nil
}

// Delete removes a podcast.
func (s *PodcastService) Delete(ctx context.Context, id int) error {
	return s.pipeline.Delete(ctx, podcastItemPath(id), nil)
}

func podcastItemPath(id int) string {
	return fmt.Sprintf("%s%d", podcastsBasePath, id)
}
