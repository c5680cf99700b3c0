package calendar

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Status describes the resolver cache
type Status struct {
	Year       int       `json:"year"`
	Loaded     bool      `json:"loaded"`
	Failed     bool      `json:"failed"`
	Count      int       `json:"count"`
	Source     string    `json:"source"`
	ResolvedAt time.Time `json:"resolved_at,omitempty"`
}

// Resolver owns the cached calendar of the most recently resolved year.
// The cache is only ever replaced wholesale.
type Resolver struct {
	source    Source
	logger    *zap.Logger
	lookahead bool
	group     singleflight.Group

	mu         sync.RWMutex
	year       int
	current    *Calendar
	loaded     bool
	failed     bool
	resolvedAt time.Time
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLookahead makes Resolve(year) also merge year+1 into the snapshot
func WithLookahead(enabled bool) Option {
	return func(r *Resolver) {
		r.lookahead = enabled
	}
}

// NewResolver creates a new Resolver with an empty cache
func NewResolver(source Source, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		source:  source,
		logger:  logger,
		current: Empty(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the calendar for year, fetching it unless the year is already
// cached. Failures are absorbed: the cache is cleared, the failed flag is set and
// an empty calendar is returned. A failed year stays cached until Refresh.
func (r *Resolver) Resolve(ctx context.Context, year int) *Calendar {
	if cal, ok := r.cached(year); ok {
		r.logger.Debug("Using cached holiday calendar", zap.Int("year", year))
		return cal
	}
	return r.load(ctx, year, true)
}

// Refresh fetches year again. Readers keep seeing the previous snapshot until
// the fetch completes.
func (r *Resolver) Refresh(ctx context.Context, year int) *Calendar {
	return r.load(ctx, year, false)
}

func (r *Resolver) cached(year int) (*Calendar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.year == year && (r.loaded || r.failed) {
		return r.current, true
	}
	return nil, false
}

// load runs at most one fetch per year at a time; concurrent callers share it
func (r *Resolver) load(ctx context.Context, year int, useCache bool) *Calendar {
	v, _, _ := r.group.Do(strconv.Itoa(year), func() (interface{}, error) {
		if useCache {
			if cal, ok := r.cached(year); ok {
				return cal, nil
			}
		}
		return r.fetch(ctx, year), nil
	})
	return v.(*Calendar)
}

func (r *Resolver) fetch(ctx context.Context, year int) *Calendar {
	records, err := r.source.FetchYear(ctx, year)
	if err != nil {
		if ctx.Err() != nil {
			r.logger.Warn("Holiday calendar fetch canceled",
				zap.Int("year", year),
				zap.Error(err))
			return Empty()
		}

		r.logger.Warn("Holiday calendar unavailable, falling back to weekend rule",
			zap.Int("year", year),
			zap.String("source", r.source.Name()),
			zap.Error(err))

		r.mu.Lock()
		r.year = year
		r.current = Empty()
		r.loaded = false
		r.failed = true
		r.resolvedAt = time.Time{}
		r.mu.Unlock()

		return Empty()
	}

	cal := NewCalendar(year, records)

	if r.lookahead {
		next, err := r.source.FetchYear(ctx, year+1)
		if err != nil {
			r.logger.Warn("Look-ahead holiday year unavailable",
				zap.Int("year", year+1),
				zap.Error(err))
		} else {
			cal = cal.Merge(NewCalendar(year+1, next))
		}
	}

	r.mu.Lock()
	r.year = year
	r.current = cal
	r.loaded = true
	r.failed = false
	r.resolvedAt = time.Now()
	r.mu.Unlock()

	r.logger.Info("Holiday calendar resolved",
		zap.Int("year", year),
		zap.Int("records", cal.Len()),
		zap.Bool("lookahead", r.lookahead))

	return cal
}

// Calendar returns the current snapshot (empty when nothing is loaded)
func (r *Resolver) Calendar() *Calendar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Status returns the cache state
func (r *Resolver) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.statusLocked()
}

// Snapshot returns the calendar and the status that describes it
func (r *Resolver) Snapshot() (*Calendar, Status) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.statusLocked()
}

func (r *Resolver) statusLocked() Status {
	return Status{
		Year:       r.year,
		Loaded:     r.loaded,
		Failed:     r.failed,
		Count:      r.current.Len(),
		Source:     r.source.Name(),
		ResolvedAt: r.resolvedAt,
	}
}

// Clear empties the cache
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.year = 0
	r.current = Empty()
	r.loaded = false
	r.failed = false
	r.resolvedAt = time.Time{}
	r.logger.Info("Holiday calendar cache cleared")
}
