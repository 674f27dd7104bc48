package engine

import (
	"sync"
	"time"

	ws "kelasku/server/internal/websocket"
)

// Notice is a system notice currently on display.
type Notice struct {
	ID   int
	Kind ws.SystemEventKind
	Text string
	At   time.Time
}

// NoticeBoard is the presentation policy for ephemeral system notices. The
// protocol reports all events; the board decides what is noise. Displayed
// notices are capped at the most recent max, and each is dismissed a fixed
// delay after its own insertion — dismissal is per-notice, scheduled at
// insertion time, not a sliding window.
type NoticeBoard struct {
	mu      sync.Mutex
	notices []Notice
	nextID  int

	max int
	ttl time.Duration

	// ShowJoinLeave lets join/leave chatter through; in a class-sized
	// conversation it is filtered out by default.
	ShowJoinLeave bool

	// OnChange fires after every insertion or expiry.
	OnChange func()
}

// NewNoticeBoard builds a board showing at most max notices, each for ttl.
func NewNoticeBoard(max int, ttl time.Duration) *NoticeBoard {
	return &NoticeBoard{max: max, ttl: ttl}
}

// DefaultNoticeBoard returns the standard policy: 5 notices, 5 seconds each.
func DefaultNoticeBoard() *NoticeBoard {
	return NewNoticeBoard(5, 5*time.Second)
}

// Observe consumes one system event, applying the display filter.
func (b *NoticeBoard) Observe(ev ws.SystemEvent) {
	if !b.ShowJoinLeave && (ev.Kind == ws.SystemJoin || ev.Kind == ws.SystemLeave) {
		return
	}

	b.mu.Lock()
	b.nextID++
	n := Notice{ID: b.nextID, Kind: ev.Kind, Text: ev.Text, At: ev.At}
	b.notices = append(b.notices, n)
	if len(b.notices) > b.max {
		b.notices = b.notices[len(b.notices)-b.max:]
	}
	b.mu.Unlock()

	time.AfterFunc(b.ttl, func() { b.expire(n.ID) })

	b.notifyChange()
}

// Visible returns the notices currently on display, oldest first.
func (b *NoticeBoard) Visible() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Notice, len(b.notices))
	copy(out, b.notices)
	return out
}

func (b *NoticeBoard) expire(id int) {
	b.mu.Lock()
	removed := false
	for i, n := range b.notices {
		if n.ID == id {
			b.notices = append(b.notices[:i], b.notices[i+1:]...)
			removed = true
			break
		}
	}
	b.mu.Unlock()

	if removed {
		b.notifyChange()
	}
}

func (b *NoticeBoard) notifyChange() {
	if b.OnChange != nil {
		b.OnChange()
	}
}
