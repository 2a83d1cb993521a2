package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MODSetter/SurfSense-sub002/domain"
	"github.com/MODSetter/SurfSense-sub002/models"
)

func TestChatService_List(t *testing.T) {
	var gotPath, gotQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id": 1, "type": "GENERAL", "title": "Release planning", "search_space_id": 3, "messages": []}]`)
	})

	h := newPipelineHarness(t, handler)
	seedCredential(t, h.repo, "access_token_1", "refresh_token_1")
	svc := NewChatService(h.pipeline, nil, testLogger())

	chats, err := svc.List(context.Background(), 3)

	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, models.ChatTypeGeneral, chats[0].Type)
	assert.Equal(t, "/api/v1/chats/", gotPath)
	assert.Equal(t, "search_space_id=3", gotQuery)
}

func TestChatService_Create(t *testing.T) {
	var gotBody string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 9, "type": "GENERAL", "title": "Release planning", "search_space_id": 3,
			"messages": [{"role": "user", "content": "What changed this sprint?"}]}`)
	})

	h := newPipelineHarness(t, handler)
	seedCredential(t, h.repo, "access_token_1", "refresh_token_1")
	svc := NewChatService(h.pipeline, nil, testLogger())

	chat, err := svc.Create(context.Background(), &models.ChatCreateRequest{
		Type:          models.ChatTypeGeneral,
		Title:         "Release planning",
		Messages:      []models.ChatMessage{{Role: "user", Content: "What changed this sprint?"}},
		SearchSpaceID: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, 9, chat.ID)
	require.Len(t, chat.Messages, 1)
	assert.JSONEq(t, `{
		"type": "GENERAL",
		"title": "Release planning",
		"messages": [{"role": "user", "content": "What changed this sprint?"}],
		"search_space_id": 3
	}`, gotBody)
}

func TestChatService_Create_Validation(t *testing.T) {
	tests := map[string]struct {
		request   *models.ChatCreateRequest
		wantIssue string
	}{
		"unknown_chat_type": {
			request: &models.ChatCreateRequest{
				Type:          "TELEPATHIC",
				Title:         "Chat",
				Messages:      []models.ChatMessage{{Role: "user", Content: "hi"}},
				SearchSpaceID: 3,
			},
			wantIssue: "type must be a known chat type",
		},
		"missing_messages": {
			request: &models.ChatCreateRequest{
				Type:          models.ChatTypeGeneral,
				Title:         "Chat",
				SearchSpaceID: 3,
			},
			wantIssue: "messages is required",
		},
		"invalid_message_role": {
			request: &models.ChatCreateRequest{
				Type:          models.ChatTypeGeneral,
				Title:         "Chat",
				Messages:      []models.ChatMessage{{Role: "narrator", Content: "hi"}},
				SearchSpaceID: 3,
			},
			wantIssue: "role must be one of: user assistant system",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			hits := 0
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits++
				fmt.Fprint(w, `{}`)
			})

			h := newPipelineHarness(t, handler)
			svc := NewChatService(h.pipeline, nil, testLogger())

			chat, err := svc.Create(context.Background(), tc.request)

			assert.Nil(t, chat)
			assert.True(t, domain.IsValidationError(err))
			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Contains(t, apiErr.FieldIssues, tc.wantIssue)
			assert.Equal(t, 0, hits)
		})
	}
}

func TestChatService_Update(t *testing.T) {
	var gotMethod, gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 9, "type": "GENERAL", "title": "Release planning", "search_space_id": 3,
			"messages": [{"role": "user", "content": "hi"}, {"role": "assistant", "content": "hello"}]}`)
	})

	h := newPipelineHarness(t, handler)
	seedCredential(t, h.repo, "access_token_1", "refresh_token_1")
	svc := NewChatService(h.pipeline, nil, testLogger())

	chat, err := svc.Update(context.Background(), 9, &models.ChatUpdateRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}},
	})

	require.NoError(t, err)
	assert.Len(t, chat.Messages, 2)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/v1/chats/9", gotPath)
}

func TestChatService_Delete(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	h := newPipelineHarness(t, handler)
	seedCredential(t, h.repo, "access_token_1", "refresh_token_1")
	svc := NewChatService(h.pipeline, nil, testLogger())

	err := svc.Delete(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, "/api/v1/chats/9", gotPath)
}
