// ABOUTME: This file defines podcast models for generated audio summaries
// ABOUTME: Podcasts are produced server-side from selected chats

package models

import "time"

// Podcast represents a generated audio summary.
type Podcast struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	PodcastTranscript string    `json:"podcast_transcript,omitempty"`
	FileLocation      string    `json:"file_location,omitempty"`
	IsGenerated       bool      `json:"is_generated"`
	SearchSpaceID     int       `json:"search_space_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// PodcastGenerateRequest asks the backend to produce podcasts from chats.
type PodcastGenerateRequest struct {
	Type          string `json:"type" validate:"required,oneof=CHAT"`
	ChatIDs       []int  `json:"ids" validate:"required,min=1,dive,gt=0"`
	SearchSpaceID int    `json:"search_space_id" validate:"required,gt=0"`
}
