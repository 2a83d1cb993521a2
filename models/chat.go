// ABOUTME: This file defines chat models for the research chat API
// ABOUTME: A chat is a stored conversation scoped to a search space

package models

import "time"

// ChatType selects the research depth of a conversation.
type ChatType string

const (
	ChatTypeGeneral ChatType = "GENERAL"
	ChatTypeDeep    ChatType = "DEEP"
	ChatTypeDeeper  ChatType = "DEEPER"
)

// ChatMessage is a single turn inside a stored conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// Chat represents a stored conversation.
type Chat struct {
	ID                int           `json:"id"`
	Type              ChatType      `json:"type"`
	Title             string        `json:"title"`
	InitialConnectors []string      `json:"initial_connectors,omitempty"`
	Messages          []ChatMessage `json:"messages"`
	SearchSpaceID     int           `json:"search_space_id"`
	CreatedAt         time.Time     `json:"created_at"`
}

// ChatCreateRequest is the payload for opening a new conversation.
type ChatCreateRequest struct {
	Type              ChatType      `json:"type" validate:"required,chat_type"`
	Title             string        `json:"title" validate:"required,min=1,max=200"`
	InitialConnectors []string      `json:"initial_connectors,omitempty"`
	Messages          []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	SearchSpaceID     int           `json:"search_space_id" validate:"required,gt=0"`
}

// ChatUpdateRequest appends turns or renames a conversation.
type ChatUpdateRequest struct {
	Title    string        `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Messages []ChatMessage `json:"messages,omitempty" validate:"omitempty,dive"`
}
