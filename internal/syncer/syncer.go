// Package syncer coordinates the fetch, dedup, persist, notify sequence.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"postkeeper/internal/dedup"
	"postkeeper/internal/model"
	"postkeeper/internal/storage"
)

// ErrSyncInProgress is returned by Sync when another sync is still running.
var ErrSyncInProgress = errors.New("sync already in progress")

// Fetcher is the remote collaborator that retrieves candidate posts.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Post, error)
}

// Notifier is the collaborator told about newly saved posts. It is
// best-effort: its failure never fails the sync.
type Notifier interface {
	NewPosts(ctx context.Context, posts []model.Post) error
}

// Result summarizes a completed sync.
type Result struct {
	Fetched int
	New     int
}

// Syncer runs the end-to-end synchronization against one store.
// Overlapping Sync calls are rejected; Sync may run concurrently with flag
// mutations since the store serializes all writes.
type Syncer struct {
	store    storage.Storage
	fetch    Fetcher
	notifier Notifier
	log      *slog.Logger
	interval time.Duration
	busy     atomic.Bool
}

// New creates a Syncer. The notifier may be nil to disable notifications.
func New(store storage.Storage, fetch Fetcher, notifier Notifier, log *slog.Logger) *Syncer {
	return &Syncer{
		store:    store,
		fetch:    fetch,
		notifier: notifier,
		log:      log,
		interval: 15 * time.Minute,
	}
}

// SetInterval overrides the default 15-minute sync interval used by Run.
func (s *Syncer) SetInterval(d time.Duration) {
	s.interval = d
}

// Sync fetches the remote feed, filters out already-stored posts, and saves
// the remainder in one atomic batch. On any error the store is left exactly
// as it was. An empty delta is a success with no transaction opened and no
// notification sent.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return Result{}, ErrSyncInProgress
	}
	defer s.busy.Store(false)

	candidates, err := s.fetch.Fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch posts: %w", err)
	}

	fresh, err := dedup.FilterNew(ctx, s.store, candidates)
	if err != nil {
		return Result{}, fmt.Errorf("filter posts: %w", err)
	}

	res := Result{Fetched: len(candidates), New: len(fresh)}
	if len(fresh) == 0 {
		return res, nil
	}

	if err := s.store.InsertPosts(ctx, fresh); err != nil {
		return Result{}, fmt.Errorf("save posts: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NewPosts(ctx, fresh); err != nil {
			s.log.Warn("notify new posts", "count", len(fresh), "error", err)
		}
	}
	return res, nil
}

// Run syncs immediately and then on every tick, blocking until ctx is
// cancelled.
func (s *Syncer) Run(ctx context.Context) {
	s.syncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *Syncer) syncOnce(ctx context.Context) {
	res, err := s.Sync(ctx)
	if err != nil {
		s.log.Error("sync", "error", err)
		return
	}
	if res.New > 0 {
		s.log.Info("sync complete", "fetched", res.Fetched, "new", res.New)
	} else {
		s.log.Debug("sync complete, nothing new", "fetched", res.Fetched)
	}
}
