package engine

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"kelasku/server/internal/models"
	ws "kelasku/server/internal/websocket"
)

// TransportConfig configures a Transport.
type TransportConfig struct {
	// URL is the conversation's live-channel endpoint (ws:// or wss://).
	URL string

	// Token authenticates the connection.
	Token string

	// Disabled starts the manager in fallback-only mode: Send always
	// returns false and no connection is attempted. Runtime-settable via
	// SetDisabled.
	Disabled bool

	// ReconnectWait is the pause between reconnection attempts.
	ReconnectWait time.Duration

	// OnMessage receives each inbound persisted message. clientID is the
	// echoed draft clientId, non-empty only for the sender's own messages.
	OnMessage func(msg models.Message, clientID string)

	// OnSystemEvent receives ephemeral participant notices.
	OnSystemEvent func(ev ws.SystemEvent)

	// OnStateChange observes connection state transitions.
	OnStateChange func(connected bool)
}

// Transport owns the single logical live-push connection for one
// conversation. It reconnects automatically until Disconnect is called.
type Transport struct {
	cfg    TransportConfig
	dialer *websocket.Dialer

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	disabled  bool
	done      chan struct{}
	running   bool

	// writeMu serializes writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex
}

// NewTransport builds a transport; Connect must be called to start it.
func NewTransport(cfg TransportConfig) *Transport {
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 3 * time.Second
	}
	return &Transport{
		cfg:      cfg,
		disabled: cfg.Disabled,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Connected reports whether the live channel is currently established.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// SetDisabled switches fallback-only mode at runtime. Disabling drops the
// current connection.
func (t *Transport) SetDisabled(disabled bool) {
	t.mu.Lock()
	t.disabled = disabled
	conn := t.conn
	t.mu.Unlock()

	if disabled && conn != nil {
		conn.Close()
	}
}

// Connect starts the connection loop. It returns immediately; delivery of
// inbound frames begins once the dial succeeds. While disabled the loop
// idles without dialing, so a later SetDisabled(false) picks the channel
// up. Calling Connect on a running transport is a no-op.
func (t *Transport) Connect(ctx context.Context) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.done = make(chan struct{})
	done := t.done
	t.mu.Unlock()

	go t.run(ctx, done)
}

// Disconnect stops the connection loop and closes the channel. Reconnection
// does not resume until Connect is called again.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.done)
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	t.setConnected(false)
}

// Send writes a draft on the live channel. It returns false whenever the
// channel is not currently established, including when the transport is
// disabled; callers treat false as "not delivered, try fallback", never as a
// user-facing error.
func (t *Transport) Send(draft models.Draft) bool {
	t.mu.Lock()
	conn := t.conn
	ok := t.connected && !t.disabled && conn != nil
	t.mu.Unlock()

	if !ok {
		return false
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(draft); err != nil {
		log.Printf("Live send failed: %v", err)
		conn.Close() // force the read loop into reconnect
		return false
	}
	return true
}

func (t *Transport) run(ctx context.Context, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			t.Disconnect()
			return
		default:
		}

		t.mu.Lock()
		disabled := t.disabled
		t.mu.Unlock()

		if !disabled {
			if conn := t.dial(ctx); conn != nil {
				t.readLoop(conn, done)
			}
		}

		select {
		case <-done:
			return
		case <-ctx.Done():
			t.Disconnect()
			return
		case <-time.After(t.cfg.ReconnectWait):
		}
	}
}

func (t *Transport) dial(ctx context.Context) *websocket.Conn {
	header := http.Header{}
	if t.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+t.cfg.Token)
	}

	conn, resp, err := t.dialer.DialContext(ctx, t.cfg.URL, header)
	if err != nil {
		log.Printf("Live channel dial failed: %v", err)
		return nil
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.mu.Unlock()
	t.notifyState(true)

	return conn
}

func (t *Transport) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer func() {
		t.mu.Lock()
		if t.conn == conn {
			t.conn = nil
		}
		t.connected = false
		t.mu.Unlock()
		conn.Close()
		t.notifyState(false)
	}()

	for {
		select {
		case <-done:
			return
		default:
		}

		var frame ws.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Live channel read error: %v", err)
			}
			return
		}

		switch frame.Type {
		case ws.FrameMessage:
			if frame.Message != nil && t.cfg.OnMessage != nil {
				t.cfg.OnMessage(*frame.Message, frame.ClientID)
			}
		case ws.FrameSystem:
			if frame.System != nil && t.cfg.OnSystemEvent != nil {
				t.cfg.OnSystemEvent(*frame.System)
			}
		default:
			log.Printf("Unknown frame type: %s", frame.Type)
		}
	}
}

func (t *Transport) setConnected(v bool) {
	t.mu.Lock()
	t.connected = v
	t.mu.Unlock()
}

func (t *Transport) notifyState(connected bool) {
	if t.cfg.OnStateChange != nil {
		t.cfg.OnStateChange(connected)
	}
}
