package engine

import (
	"fmt"
	"testing"
	"time"

	"kelasku/server/internal/models"
)

var testBase = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func mkMsg(id string, offset time.Duration) models.Message {
	return models.Message{
		ID:             id,
		ConversationID: "class-1",
		SenderID:       "acc-1",
		SenderType:     models.SenderAccount,
		SenderRole:     models.RoleTeacher,
		SenderName:     "Bu Sari",
		Type:           models.TypeText,
		Content:        "message " + id,
		CreatedAt:      testBase.Add(offset),
	}
}

// mkPage builds a newest-first history page of n messages ending at endOffset.
func mkPage(startIdx, n int, endOffset time.Duration) []models.Message {
	page := make([]models.Message, 0, n)
	for i := n - 1; i >= 0; i-- {
		id := fmt.Sprintf("m%03d", startIdx+i)
		page = append(page, mkMsg(id, endOffset-time.Duration(n-1-i)*time.Minute))
	}
	return page
}

func ids(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func assertChronological(t *testing.T, msgs []models.Message) {
	t.Helper()
	for i := 1; i < len(msgs); i++ {
		a, b := msgs[i-1], msgs[i]
		if b.CreatedAt.Before(a.CreatedAt) ||
			(b.CreatedAt.Equal(a.CreatedAt) && b.ID < a.ID) {
			t.Fatalf("ordering violated at %d: %s(%v) before %s(%v)",
				i, a.ID, a.CreatedAt, b.ID, b.CreatedAt)
		}
	}
}

func TestMergeDedup(t *testing.T) {
	s := NewTimelineStore()

	a := mkMsg("a", 0)
	b := mkMsg("b", time.Minute)
	c := mkMsg("c", 2*time.Minute)

	s.Merge([]models.Message{b, a}, OriginHistory)
	s.Merge([]models.Message{b, c}, OriginLive) // b repeated
	s.Merge([]models.Message{a, c}, OriginLive) // both repeated

	got := s.Messages()
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d: %v", len(got), ids(got))
	}

	seen := make(map[string]int)
	for _, m := range got {
		seen[m.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %s appears %d times", id, n)
		}
	}
}

func TestMergeOrdering(t *testing.T) {
	s := NewTimelineStore()

	// Same timestamp, id tiebreak
	x := mkMsg("x", time.Minute)
	y := mkMsg("y", time.Minute)
	early := mkMsg("e", 0)
	late := mkMsg("z", 2*time.Minute)

	s.Merge([]models.Message{y, late}, OriginLive)
	s.Merge([]models.Message{x, early}, OriginHistory)

	got := s.Messages()
	assertChronological(t, got)

	want := []string{"e", "x", "y", "z"}
	for i, id := range ids(got) {
		if id != want[i] {
			t.Fatalf("position %d: got %s, want %s (full: %v)", i, id, want[i], ids(got))
		}
	}
}

func TestOutOfOrderPages(t *testing.T) {
	// Two pages of 20, fetched C0->C1->C2 but merged newer-last due to a
	// race: the final timeline must still be chronological across all 40.
	newer := mkPage(20, 20, -1*time.Hour)
	older := mkPage(0, 20, -1*time.Hour-20*time.Minute)

	s := NewTimelineStore()
	s.Merge(older, OriginHistory)
	s.Merge(newer, OriginHistory)

	if s.Len() != 40 {
		t.Fatalf("expected 40 messages, got %d", s.Len())
	}
	assertChronological(t, s.Messages())

	// And the reverse merge order gives the same sequence
	s2 := NewTimelineStore()
	s2.Merge(newer, OriginHistory)
	s2.Merge(older, OriginHistory)

	got, got2 := ids(s.Messages()), ids(s2.Messages())
	for i := range got {
		if got[i] != got2[i] {
			t.Fatalf("merge order changed result at %d: %s vs %s", i, got[i], got2[i])
		}
	}
}

func TestPaginationIdempotence(t *testing.T) {
	page := mkPage(0, 20, 0)

	s := NewTimelineStore()
	s.Merge(page, OriginHistory)
	before := ids(s.Messages())

	// A retried request re-delivers the same page
	s.Merge(page, OriginHistory)
	after := ids(s.Messages())

	if len(before) != len(after) {
		t.Fatalf("double merge changed length: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("double merge changed sequence at %d", i)
		}
	}
}

func TestResolvePending(t *testing.T) {
	s := NewTimelineStore()
	viewer := Viewer{ID: "acc-1", Name: "Bu Sari", Role: models.RoleTeacher}

	draft := models.Draft{ClientID: "client-1", Content: "hello", Type: models.TypeText}
	s.AppendPending(draft, viewer)

	if s.PendingCount() != 1 {
		t.Fatalf("expected 1 pending, got %d", s.PendingCount())
	}
	entries := s.Entries()
	if len(entries) != 1 || !entries[0].Pending {
		t.Fatalf("expected one pending entry, got %+v", entries)
	}

	// Authoritative echo arrives
	auth := mkMsg("srv-1", 0)
	s.Resolve("client-1", auth)

	if s.PendingCount() != 0 {
		t.Errorf("pending copy not removed")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 authoritative message, got %d", s.Len())
	}

	// A second delivery of the same message is dropped silently
	res := s.Resolve("client-1", auth)
	if res.Added != 0 {
		t.Errorf("duplicate echo was re-added")
	}
	if s.Len() != 1 {
		t.Errorf("duplicate echo grew timeline to %d", s.Len())
	}
}

func TestDropPending(t *testing.T) {
	s := NewTimelineStore()
	viewer := Viewer{ID: "acc-1", Role: models.RoleTeacher}

	s.AppendPending(models.Draft{ClientID: "c1", Content: "x", Type: models.TypeText}, viewer)
	s.DropPending("c1")

	if s.PendingCount() != 0 {
		t.Errorf("pending copy not dropped")
	}
	if s.Len() != 0 {
		t.Errorf("drop leaked into authoritative timeline")
	}
}

func TestAutoscroll(t *testing.T) {
	s := NewTimelineStore()

	// First load jumps to the bottom unconditionally
	res := s.Merge(mkPage(0, 5, 0), OriginHistory)
	if !res.FirstLoad || !res.ScrollToBottom {
		t.Errorf("first load: FirstLoad=%v ScrollToBottom=%v", res.FirstLoad, res.ScrollToBottom)
	}

	// Reading old history: a live append must not interrupt
	s.NoteViewport(500)
	res = s.Merge([]models.Message{mkMsg("live-1", time.Hour)}, OriginLive)
	if res.ScrollToBottom {
		t.Errorf("append scrolled while viewport was far from bottom")
	}

	// Near the bottom: stick
	s.NoteViewport(50)
	res = s.Merge([]models.Message{mkMsg("live-2", 2*time.Hour)}, OriginLive)
	if !res.ScrollToBottom {
		t.Errorf("append did not stick while viewport was near bottom")
	}

	// History prepends never scroll
	s.NoteViewport(50)
	res = s.Merge(mkPage(100, 5, -24*time.Hour), OriginHistory)
	if res.ScrollToBottom {
		t.Errorf("history prepend triggered a scroll to bottom")
	}
}
