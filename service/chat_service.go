// ABOUTME: Research chat endpoints wrapper over the request pipeline
// ABOUTME: Conversations are created with validated message payloads

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

const chatsBasePath = "/api/v1/chats/"

// ChatService exposes the stored conversation endpoints.
type ChatService struct {
	pipeline  *Pipeline
	validator *security.RequestValidator
	logger    *slog.Logger
}

// NewChatService creates a chat service on top of the pipeline.
func NewChatService(pipeline *Pipeline, validator *security.RequestValidator, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = security.NewRequestValidator()
	}

	return &ChatService{pipeline: pipeline, validator: validator, logger: logger}
}

// List returns the conversations of a search space. A non-positive
// searchSpaceID lists across all spaces.
func (s *ChatService) List(ctx context.Context, searchSpaceID int) ([]models.Chat, error) {
	query := url.Values{}
	if searchSpaceID > 0 {
		query.Set("search_space_id", strconv.Itoa(searchSpaceID))
	}

	var chats []models.Chat
	if err := s.pipeline.Get(ctx, chatsBasePath, query, &chats); err != nil {
		return nil, err
	}

	s.logger.Debug("Listed chats", "count", len(chats), "search_space_id", searchSpaceID)
	return chats, nil
}

// Get returns one conversation by ID.
func (s *ChatService) Get(ctx context.Context, id int) (*models.Chat, error) {
	var chat models.Chat
	if err := s.pipeline.Get(ctx, chatItemPath(id), nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// Create opens a new conversation and returns the stored record.
func (s *ChatService) Create(ctx context.Context, req *models.ChatCreateRequest) (*models.Chat, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var chat models.Chat
	if err := s.pipeline.Post(ctx, chatsBasePath, req, &chat); err != nil {
		return nil, err
	}

	s.logger.Info("Chat created",
		"chat_id", chat.ID,
		"type", req.Type,
		"search_space_id", req.SearchSpaceID)
	return &chat, nil
}

// Update appends turns or renames a conversation.
func (s *ChatService) Update(ctx context.Context, id int, req *models.ChatUpdateRequest) (*models.Chat, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var chat models.Chat
	if err := s.pipeline.Put(ctx, chatItemPath(id), req, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// Delete removes a conversation.
func (s *ChatService) Delete(ctx context.Context, id int) error {
	return s.pipeline.Delete(ctx, chatItemPath(id), nil)
}

func chatItemPath(id int) string {
	return fmt.Sprintf("%s%d", chatsBasePath, id)
}
