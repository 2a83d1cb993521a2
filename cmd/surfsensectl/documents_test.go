// ABOUTME: Tests for document commands running against a fake backend
package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MODSetter/SurfSense-sub002/domain"
)

func TestDocumentsList_AgainstBackend(t *testing.T) {
	setupCLITest(t)

	var mu sync.Mutex
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 1, "title": "Getting Started", "document_type": "CRAWLED_URL", "search_space_id": 3, "created_at": "2026-01-10T08:00:00Z"}]`))
	}))
	t.Cleanup(server.Close)
	t.Setenv("SURFSENSE_BACKEND_URL", server.URL)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"documents", "list", "--search-space", "3"})

	require.NoError(t, rootCmd.Execute())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/api/v1/documents/", gotPath)
}

func TestDocumentsAdd_ValidationShortCircuits(t *testing.T) {
	setupCLITest(t)

	// No backend is configured; validation must reject the request before
	// any dispatch is attempted.
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"documents", "add"})

	err := rootCmd.Execute()
	require.Error(t, err)
	require.True(t, domain.IsValidationError(err))

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.JoinedIssues(), "content is required")
	assert.Contains(t, apiErr.JoinedIssues(), "search_space_id is required")
}

func TestDocumentsGet_InvalidID(t *testing.T) {
	setupCLITest(t)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"documents", "get", "seven"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid document ID "seven"`)
}
