package engine

import (
	"context"
	"fmt"
	"sync"

	"kelasku/server/internal/models"
)

// topTriggerThreshold is how close to the top of loaded history, in pixels,
// the viewport must be before the next page is requested.
const topTriggerThreshold = 80.0

// historyAPI is the slice of APIClient the loader needs.
type historyAPI interface {
	History(ctx context.Context, cursor string) (*HistoryPage, error)
}

// HistoryLoader fetches backward-paginated message pages on demand. At most
// one fetch is outstanding at a time; a trigger during an in-flight fetch is
// a no-op, not a queued request.
type HistoryLoader struct {
	api historyAPI

	mu       sync.Mutex
	cursor   string
	hasMore  bool
	fetching bool
	loaded   bool
}

// NewHistoryLoader builds a loader positioned at the newest page.
func NewHistoryLoader(api historyAPI) *HistoryLoader {
	return &HistoryLoader{api: api, hasMore: true}
}

// IsFetching reports whether a page request is in flight.
func (l *HistoryLoader) IsFetching() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetching
}

// HasMore reports whether older pages remain. False is terminal.
func (l *HistoryLoader) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

// Loaded reports whether at least one page has been fetched.
func (l *HistoryLoader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// ShouldTrigger is the scroll policy: request the next page only when the
// viewport is within the top threshold, more history exists, and no fetch is
// already running.
func (l *HistoryLoader) ShouldTrigger(scrollTopPx float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return scrollTopPx <= topTriggerThreshold && l.hasMore && !l.fetching
}

// FetchPage requests the next backward page. It returns (nil, nil) when a
// fetch is already outstanding or the history is exhausted. On failure the
// cursor and hasMore state are untouched, so a retry is safe.
func (l *HistoryLoader) FetchPage(ctx context.Context) ([]models.Message, error) {
	l.mu.Lock()
	if l.fetching || !l.hasMore {
		l.mu.Unlock()
		return nil, nil
	}
	l.fetching = true
	cursor := l.cursor
	l.mu.Unlock()

	page, err := l.api.History(ctx, cursor)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetching = false

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	l.loaded = true
	l.hasMore = page.HasMore
	if page.NextCursor != "" {
		l.cursor = page.NextCursor
	}

	return page.Messages, nil
}
