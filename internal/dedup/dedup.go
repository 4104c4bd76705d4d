// Package dedup removes already-stored posts from a candidate batch.
package dedup

import (
	"context"

	"postkeeper/internal/model"
)

// Checker is the membership check against the post store.
type Checker interface {
	Exists(ctx context.Context, link string) (bool, error)
}

// FilterNew returns the candidates whose link is not yet stored, preserving
// input order. The store is only read, never written. Candidates sharing a
// link within the same batch all pass; the store's duplicate check is the
// backstop for that case.
func FilterNew(ctx context.Context, store Checker, candidates []model.Post) ([]model.Post, error) {
	var fresh []model.Post
	for _, p := range candidates {
		exists, err := store.Exists(ctx, p.Link)
		if err != nil {
			return nil, err
		}
		if !exists {
			fresh = append(fresh, p)
		}
	}
	return fresh, nil
}
