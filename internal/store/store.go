// Package store provides persistence for the cross-session portfolio
// context document.
package store

import (
	"context"
	"time"
)

// UpdateMode controls how new content is applied to a section.
type UpdateMode string

const (
	ModeReplace UpdateMode = "replace"
	ModeAppend  UpdateMode = "append"
	ModePrepend UpdateMode = "prepend"
)

// Section is one named block of the portfolio context document.
type Section struct {
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContextStore persists portfolio context sections across sessions.
type ContextStore interface {
	GetSection(ctx context.Context, name string) (*Section, error)
	ListSections(ctx context.Context) ([]Section, error)
	UpdateSection(ctx context.Context, name, content string, mode UpdateMode) (*Section, error)
	Close() error
}
