// Package feed keeps a view's list of forms fresh by polling the backend.
//
// Every Refresh is tagged with a generation number taken when it starts. A
// result is applied only if no later-started refresh has been applied
// already, so an overlapping slow response can never overwrite newer data.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/me/odflow/internal/logging"
	"github.com/me/odflow/pkg/model"
)

// ErrStale is returned by Refresh when its result was superseded by a
// later refresh and discarded.
var ErrStale = errors.New("refresh superseded by a newer one")

// Fetcher loads the unfiltered forms for a view.
type Fetcher func(ctx context.Context) ([]model.Form, error)

// Projection selects and orders the forms a view shows. It must not modify
// its input.
type Projection func(forms []model.Form) []model.Form

// Clock returns the current time.
type Clock func() time.Time

// Snapshot is the state of a feed after its latest applied refresh. Forms
// is shared and must be treated as read-only.
type Snapshot struct {
	Forms      []model.Form
	Generation uint64
	UpdatedAt  time.Time
	// Loaded is false until the first refresh succeeds.
	Loaded bool
	// Err is the error of the latest applied refresh. Forms then still hold
	// the last good result.
	Err error
}

// Feed is a polled view over the backend. It is safe for concurrent use.
type Feed struct {
	name    string
	fetch   Fetcher
	project Projection
	logger  *slog.Logger
	now     Clock

	mu      sync.Mutex
	issued  uint64
	applied uint64
	snap    Snapshot
	subs    []func(Snapshot)
}

// Option configures a Feed.
type Option func(*Feed)

// WithClock replaces time.Now for UpdatedAt stamps.
func WithClock(now Clock) Option {
	return func(f *Feed) {
		f.now = now
	}
}

// New creates a feed. A nil project shows forms as fetched.
func New(name string, fetch Fetcher, project Projection, logger *slog.Logger, opts ...Option) *Feed {
	if project == nil {
		project = func(forms []model.Form) []model.Form { return forms }
	}
	f := &Feed{
		name:    name,
		fetch:   fetch,
		project: project,
		logger:  logging.Component(logger, "feed").With("feed", name),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the feed's name.
func (f *Feed) Name() string {
	return f.name
}

// Snapshot returns the latest applied state.
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// OnUpdate registers fn to be called after every applied refresh, including
// failed ones. fn runs on the refreshing goroutine.
func (f *Feed) OnUpdate(fn func(Snapshot)) {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
}

// Refresh fetches once and applies the result unless it is stale. It
// returns ErrStale for a discarded result, the fetch error for a failed
// one, and the context's error when ctx ends first; a cancelled refresh
// leaves the snapshot untouched.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.issued++
	gen := f.issued
	f.mu.Unlock()

	forms, err := f.fetch(ctx)
	if err != nil && ctx.Err() != nil {
		f.logger.Debug("refresh cancelled", "generation", gen)
		return ctx.Err()
	}
	var shown []model.Form
	if err == nil {
		shown = f.project(forms)
		if shown == nil {
			shown = []model.Form{}
		}
	}

	f.mu.Lock()
	if gen <= f.applied {
		f.mu.Unlock()
		f.logger.Debug("discarding stale refresh", "generation", gen, "applied", f.applied)
		return ErrStale
	}
	f.applied = gen
	f.snap.Generation = gen
	f.snap.UpdatedAt = f.now()
	f.snap.Err = err
	if err == nil {
		f.snap.Forms = shown
		f.snap.Loaded = true
	}
	snap := f.snap
	subs := slices.Clone(f.subs)
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn("refresh failed", "generation", gen, "error", err)
	} else {
		f.logger.Debug("refresh applied", "generation", gen, "forms", len(shown))
	}
	for _, fn := range subs {
		fn(snap)
	}
	return err
}

// Run refreshes immediately and then every interval until ctx is done,
// which is how a view stops polling when it goes away. It returns
// ctx.Err().
func (f *Feed) Run(ctx context.Context, interval time.Duration) error {
	f.logger.Info("polling started", "interval", interval)
	f.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("polling stopped")
			return ctx.Err()
		case <-ticker.C:
			f.Refresh(ctx)
		}
	}
}
