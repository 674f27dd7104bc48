package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"kelasku/server/internal/models"
)

// SessionConfig configures a conversation session.
type SessionConfig struct {
	// BaseURL is the server's HTTP origin, e.g. "http://localhost:8080".
	BaseURL string
	// Token is the viewer's bearer token.
	Token string
	// ConversationID scopes the session to one class conversation.
	ConversationID string
	// Viewer is the current reader's identity and role.
	Viewer Viewer
	// TransportDisabled starts the session in fallback-only mode.
	TransportDisabled bool
	// OnConnectionChange observes the live channel's state for status UI.
	OnConnectionChange func(connected bool)
	// OnTimelineChange fires after any merge that changed the timeline,
	// carrying the scroll decision for that change.
	OnTimelineChange func(MergeResult)
}

// Session owns one conversation's synchronization state: the live transport,
// the history loader, the merged timeline, the delivery path, and the system
// notice board.
type Session struct {
	Viewer    Viewer
	API       *APIClient
	Transport *Transport
	Loader    *HistoryLoader
	Store     *TimelineStore
	Notices   *NoticeBoard
	Delivery  *DeliveryCoordinator

	onTimelineChange func(MergeResult)
}

// NewSession wires a session's components together. Call Start to connect
// and load the first page.
func NewSession(cfg SessionConfig) (*Session, error) {
	wsURL, err := liveChannelURL(cfg.BaseURL, cfg.ConversationID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Viewer:           cfg.Viewer,
		API:              NewAPIClient(cfg.BaseURL, cfg.Token, cfg.ConversationID),
		Store:            NewTimelineStore(),
		Notices:          DefaultNoticeBoard(),
		onTimelineChange: cfg.OnTimelineChange,
	}
	s.Loader = NewHistoryLoader(s.API)

	s.Transport = NewTransport(TransportConfig{
		URL:      wsURL,
		Token:    cfg.Token,
		Disabled: cfg.TransportDisabled,
		OnMessage: func(msg models.Message, clientID string) {
			res := s.Store.Resolve(clientID, msg)
			s.timelineChanged(res)
		},
		OnSystemEvent: s.Notices.Observe,
		OnStateChange: cfg.OnConnectionChange,
	})
	s.Delivery = NewDeliveryCoordinator(s.Transport, s.API, s.Store, cfg.Viewer)
	s.Delivery.OnMerged(s.timelineChanged)

	return s, nil
}

// Start connects the live channel and loads the newest history page. The
// first page races live pushes by design; the store's merge keeps the
// result ordered and deduplicated either way.
func (s *Session) Start(ctx context.Context) error {
	s.Transport.Connect(ctx)

	msgs, err := s.Loader.FetchPage(ctx)
	if err != nil {
		return err
	}
	res := s.Store.Merge(msgs, OriginHistory)
	s.timelineChanged(res)
	return nil
}

// Stop tears the live channel down.
func (s *Session) Stop() {
	s.Transport.Disconnect()
}

// LoadOlder applies the scroll trigger policy and, when it fires, merges the
// next backward page at the head.
func (s *Session) LoadOlder(ctx context.Context, scrollTopPx float64) error {
	if !s.Loader.ShouldTrigger(scrollTopPx) {
		return nil
	}

	msgs, err := s.Loader.FetchPage(ctx)
	if err != nil {
		return err
	}
	if len(msgs) > 0 {
		res := s.Store.Merge(msgs, OriginHistory)
		s.timelineChanged(res)
	}
	return nil
}

// Roster fetches the participant list and projects it into role groups.
func (s *Session) Roster(ctx context.Context) ([]RosterGroup, error) {
	members, err := s.API.Roster(ctx)
	if err != nil {
		return nil, err
	}
	return GroupMembers(members), nil
}

// FileURL resolves a short-lived signed URL for a file message's attachment.
func (s *Session) FileURL(ctx context.Context, fileID, disposition string) (string, error) {
	u, err := s.API.FileURL(ctx, fileID, disposition)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	return u, nil
}

func (s *Session) timelineChanged(res MergeResult) {
	if res.Added > 0 && s.onTimelineChange != nil {
		s.onTimelineChange(res)
	}
}

// liveChannelURL derives the websocket endpoint from the HTTP origin.
func liveChannelURL(baseURL, conversationID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/conversations/" + conversationID + "/ws"
	return u.String(), nil
}
