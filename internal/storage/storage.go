// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"

	"postkeeper/internal/model"
	"postkeeper/internal/query"
)

// ErrDuplicateLink is returned by InsertPosts when a post's link collides
// with an already stored post. The dedup filter normally prevents this; the
// store still rejects it rather than silently overwrite.
var ErrDuplicateLink = errors.New("duplicate link")

// Storage is the interface for all persistence operations.
//
// Every mutating method is atomic: it either applies completely or leaves
// the store exactly as it was. Reads observe only committed state.
type Storage interface {
	// InsertPosts atomically inserts the whole batch or nothing.
	InsertPosts(ctx context.Context, posts []model.Post) error

	// SetActive updates the active flag of one post. Succeeds as a no-op
	// when the link is not stored.
	SetActive(ctx context.Context, link string, active bool) error

	// ToggleFavourite flips the favourite flag of one post, treating an
	// unset flag as false, and returns the new value. The current value is
	// re-read inside the same transaction that writes the negation.
	ToggleFavourite(ctx context.Context, link string) (bool, error)

	// MarkAllSeen sets the seen flag on every stored post.
	MarkAllSeen(ctx context.Context) error

	// Exists reports whether a post with the given link is stored.
	Exists(ctx context.Context, link string) (bool, error)

	// ListPosts returns the posts matching q, newest first. Posts sharing
	// a pub date keep their insertion order.
	ListPosts(ctx context.Context, q query.Query) ([]model.Post, error)

	Close() error
}
