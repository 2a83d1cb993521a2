// ABOUTME: This file defines document models for the SurfSense document API
// ABOUTME: Documents are ingested pages, files, and connector-indexed content

package models

import "time"

// DocumentType enumerates the ingestion sources the backend accepts.
type DocumentType string

const (
	DocumentTypeExtension       DocumentType = "EXTENSION"
	DocumentTypeCrawledURL      DocumentType = "CRAWLED_URL"
	DocumentTypeFile            DocumentType = "FILE"
	DocumentTypeSlackConnector  DocumentType = "SLACK_CONNECTOR"
	DocumentTypeNotionConnector DocumentType = "NOTION_CONNECTOR"
	DocumentTypeYoutubeVideo    DocumentType = "YOUTUBE_VIDEO"
)

// Document represents a stored document inside a search space.
type Document struct {
	ID               int            `json:"id"`
	Title            string         `json:"title"`
	DocumentType     DocumentType   `json:"document_type"`
	Content          string         `json:"content"`
	DocumentMetadata map[string]any `json:"document_metadata,omitempty"`
	SearchSpaceID    int            `json:"search_space_id"`
	CreatedAt        time.Time      `json:"created_at"`
}

// DocumentCreateRequest is the payload for creating documents from raw
// content or crawled URLs.
type DocumentCreateRequest struct {
	DocumentType  DocumentType `json:"document_type" validate:"required,document_type"`
	Content       []string     `json:"content" validate:"required,min=1,dive,required"`
	SearchSpaceID int          `json:"search_space_id" validate:"required,gt=0"`
}

// DocumentUpdateRequest is the payload for renaming or re-typing a document.
type DocumentUpdateRequest struct {
	Title        string       `json:"title,omitempty" validate:"omitempty,min=1,max=512"`
	DocumentType DocumentType `json:"document_type,omitempty" validate:"omitempty,document_type"`
}
