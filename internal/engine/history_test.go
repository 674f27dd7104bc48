package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeHistoryAPI scripts page responses and records the cursors requested.
type fakeHistoryAPI struct {
	pages   []*HistoryPage
	err     error
	cursors []string
	calls   int

	// block, when non-nil, holds the fetch open until released
	entered chan struct{}
	release chan struct{}
}

func (f *fakeHistoryAPI) History(ctx context.Context, cursor string) (*HistoryPage, error) {
	f.calls++
	f.cursors = append(f.cursors, cursor)

	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}

	if f.err != nil {
		return nil, f.err
	}

	page := f.pages[0]
	if len(f.pages) > 1 {
		f.pages = f.pages[1:]
	}
	return page, nil
}

func TestFetchPageSingleFlight(t *testing.T) {
	api := &fakeHistoryAPI{
		pages:   []*HistoryPage{{Messages: mkPage(0, 5, 0), HasMore: false}},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	l := NewHistoryLoader(api)

	done := make(chan error)
	go func() {
		_, err := l.FetchPage(context.Background())
		done <- err
	}()

	<-api.entered // first fetch is now in flight

	if !l.IsFetching() {
		t.Errorf("IsFetching = false during an in-flight fetch")
	}

	// A second trigger while one is outstanding is a no-op, not an error
	msgs, err := l.FetchPage(context.Background())
	if err != nil {
		t.Errorf("overlapping fetch returned error: %v", err)
	}
	if msgs != nil {
		t.Errorf("overlapping fetch returned messages: %v", ids(msgs))
	}

	close(api.release)
	if err := <-done; err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}

	if api.calls != 1 {
		t.Errorf("expected exactly 1 request, got %d", api.calls)
	}
}

func TestEmptyConversation(t *testing.T) {
	api := &fakeHistoryAPI{pages: []*HistoryPage{{Messages: nil, HasMore: false}}}
	l := NewHistoryLoader(api)

	msgs, err := l.FetchPage(context.Background())
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty page, got %d messages", len(msgs))
	}
	if l.HasMore() {
		t.Errorf("HasMore = true after terminal empty page")
	}

	// Terminal: scrolling never triggers another fetch
	if l.ShouldTrigger(0) {
		t.Errorf("ShouldTrigger = true in terminal state")
	}
	if _, err := l.FetchPage(context.Background()); err != nil {
		t.Errorf("post-terminal fetch errored: %v", err)
	}
	if api.calls != 1 {
		t.Errorf("terminal state did not stop fetching: %d calls", api.calls)
	}
}

func TestFetchErrorIsRetryable(t *testing.T) {
	api := &fakeHistoryAPI{
		pages: []*HistoryPage{{Messages: mkPage(0, 3, 0), HasMore: true, NextCursor: "c1"}},
	}
	l := NewHistoryLoader(api)

	// First page advances the cursor
	if _, err := l.FetchPage(context.Background()); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	// Second page fails; cursor and hasMore must be untouched
	api.err = errors.New("boom")
	_, err := l.FetchPage(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if !l.HasMore() {
		t.Errorf("failed fetch flipped hasMore")
	}
	if l.IsFetching() {
		t.Errorf("failed fetch left IsFetching set")
	}

	// The retry asks for the same cursor again
	api.err = nil
	api.pages = []*HistoryPage{{Messages: nil, HasMore: false}}
	if _, err := l.FetchPage(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if api.cursors[1] != api.cursors[2] {
		t.Errorf("retry used cursor %q, want %q", api.cursors[2], api.cursors[1])
	}
}

func TestShouldTrigger(t *testing.T) {
	tests := []struct {
		name      string
		scrollTop float64
		hasMore   bool
		fetching  bool
		want      bool
	}{
		{"near top with more", 40, true, false, true},
		{"at threshold", 80, true, false, true},
		{"past threshold", 81, true, false, false},
		{"exhausted", 10, false, false, false},
		{"already fetching", 10, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewHistoryLoader(&fakeHistoryAPI{})
			l.hasMore = tt.hasMore
			l.fetching = tt.fetching

			if got := l.ShouldTrigger(tt.scrollTop); got != tt.want {
				t.Errorf("ShouldTrigger(%v) = %v, want %v", tt.scrollTop, got, tt.want)
			}
		})
	}
}

func TestFetchAdvancesCursor(t *testing.T) {
	api := &fakeHistoryAPI{
		pages: []*HistoryPage{
			{Messages: mkPage(20, 20, 0), HasMore: true, NextCursor: "c1"},
			{Messages: mkPage(0, 20, -21*time.Minute), HasMore: false},
		},
	}
	l := NewHistoryLoader(api)

	if _, err := l.FetchPage(context.Background()); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if _, err := l.FetchPage(context.Background()); err != nil {
		t.Fatalf("page 2: %v", err)
	}

	want := []string{"", "c1"}
	for i, c := range want {
		if api.cursors[i] != c {
			t.Errorf("request %d used cursor %q, want %q", i, api.cursors[i], c)
		}
	}
	if l.HasMore() {
		t.Errorf("HasMore = true after final page")
	}
}
