package engine

import (
	"sort"
	"sync"
	"time"

	"kelasku/server/internal/models"
)

// bottomStickThreshold is how close to the bottom, in pixels, the viewport
// must already be for a tail append to keep it pinned there.
const bottomStickThreshold = 120.0

// Origin tells the store which direction a batch of messages arrived from.
type Origin int

const (
	// OriginHistory marks backward-paginated pages; they grow the head.
	OriginHistory Origin = iota
	// OriginLive marks pushed or fallback-delivered messages; they grow
	// the tail.
	OriginLive
)

// Entry is one row of the merged timeline.
type Entry struct {
	Message models.Message
	Pending bool
}

// MergeResult describes what a merge did, for scroll-position management.
type MergeResult struct {
	// Added is the number of messages that survived deduplication.
	Added int
	// AtTail is true when at least one added message extended the tail.
	AtTail bool
	// FirstLoad is true for the first merge into an empty store.
	FirstLoad bool
	// ScrollToBottom is true when the view should move to the bottom:
	// immediately on first load, and on tail growth only if the viewport
	// was already near the bottom before the append.
	ScrollToBottom bool
}

// TimelineStore merges paginated history with live-pushed messages into one
// deduplicated, chronologically ordered sequence. Ordering correctness lives
// here and nowhere else: the network layers offer no ordering guarantee of
// their own.
type TimelineStore struct {
	mu      sync.Mutex
	msgs    []models.Message
	seen    map[string]struct{}
	pending []models.Message

	nearBottom bool
	loaded     bool
}

// NewTimelineStore returns an empty store.
func NewTimelineStore() *TimelineStore {
	return &TimelineStore{seen: make(map[string]struct{})}
}

// Merge folds a batch of messages into the sequence. Messages whose id has
// been seen before are dropped silently — id is the sole deduplication key.
// Each survivor is placed at its chronological position (createdAt, then id),
// so pages merged out of fetch order still yield a fully ordered timeline.
func (s *TimelineStore) Merge(incoming []models.Message, origin Origin) MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := MergeResult{FirstLoad: !s.loaded && origin == OriginHistory}

	for _, m := range incoming {
		if _, dup := s.seen[m.ID]; dup {
			continue
		}
		s.seen[m.ID] = struct{}{}

		at := s.insertPos(&m)
		if at == len(s.msgs) {
			s.msgs = append(s.msgs, m)
			res.AtTail = true
		} else {
			s.msgs = append(s.msgs, models.Message{})
			copy(s.msgs[at+1:], s.msgs[at:])
			s.msgs[at] = m
		}
		res.Added++
	}

	if origin == OriginHistory {
		s.loaded = true
	}

	switch {
	case res.FirstLoad:
		res.ScrollToBottom = true
	case origin == OriginLive && res.AtTail && s.nearBottom:
		res.ScrollToBottom = true
	}

	return res
}

// insertPos finds the chronological slot for m. Most live messages land at
// the tail and most history pages at the head, so both ends are checked
// before the binary search.
func (s *TimelineStore) insertPos(m *models.Message) int {
	n := len(s.msgs)
	if n == 0 || s.msgs[n-1].Before(m) {
		return n
	}
	if m.Before(&s.msgs[0]) {
		return 0
	}
	return sort.Search(n, func(i int) bool {
		return m.Before(&s.msgs[i])
	})
}

// AppendPending inserts an optimistic local copy of a draft at the tail,
// ahead of server acknowledgment. The copy is keyed by the draft's clientId
// and replaced by Resolve when the authoritative message arrives.
func (s *TimelineStore) AppendPending(draft models.Draft, viewer Viewer) {
	m := models.Message{
		ID:              draft.ClientID,
		SenderID:        viewer.ID,
		SenderType:      models.SenderTypeForRole(viewer.Role),
		SenderRole:      viewer.Role,
		SenderName:      viewer.Name,
		Type:            draft.Type,
		Content:         draft.Content,
		Metadata:        draft.Metadata,
		TargetStudentID: draft.TargetStudentID,
		FileID:          draft.FileID,
		FileName:        draft.FileName,
		FileMimeType:    draft.FileMimeType,
		FileSize:        draft.FileSize,
		CreatedAt:       time.Now(),
	}

	s.mu.Lock()
	s.pending = append(s.pending, m)
	s.mu.Unlock()
}

// Resolve swaps a pending copy for its authoritative message. It is safe to
// call with an unknown clientID (the message is merged normally) and safe to
// call twice (dedup drops the second merge).
func (s *TimelineStore) Resolve(clientID string, msg models.Message) MergeResult {
	if clientID != "" {
		s.DropPending(clientID)
	}
	return s.Merge([]models.Message{msg}, OriginLive)
}

// DropPending removes an optimistic copy, e.g. after a failed send.
func (s *TimelineStore) DropPending(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.pending {
		if m.ID == clientID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// NoteViewport records the viewport's distance from the bottom, in pixels.
// The value is consulted on the next tail append.
func (s *TimelineStore) NoteViewport(bottomOffsetPx float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nearBottom = bottomOffsetPx <= bottomStickThreshold
}

// Messages returns the authoritative chronological sequence.
func (s *TimelineStore) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Entries returns the rendered sequence: the authoritative messages followed
// by any pending optimistic copies at the tail.
func (s *TimelineStore) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.msgs)+len(s.pending))
	for _, m := range s.msgs {
		out = append(out, Entry{Message: m})
	}
	for _, m := range s.pending {
		out = append(out, Entry{Message: m, Pending: true})
	}
	return out
}

// Len is the number of authoritative messages in the timeline.
func (s *TimelineStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// PendingCount is the number of unresolved optimistic copies.
func (s *TimelineStore) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
