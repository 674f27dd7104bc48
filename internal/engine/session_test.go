package engine

import (
	"testing"

	"kelasku/server/internal/models"
)

func TestLiveChannelURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{"http", "http://localhost:8080", "ws://localhost:8080/api/v1/conversations/class-1/ws", false},
		{"https", "https://chat.kelasku.id", "wss://chat.kelasku.id/api/v1/conversations/class-1/ws", false},
		{"trailing slash", "http://localhost:8080/", "ws://localhost:8080/api/v1/conversations/class-1/ws", false},
		{"already ws", "ws://localhost:8080", "ws://localhost:8080/api/v1/conversations/class-1/ws", false},
		{"bad scheme", "ftp://x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := liveChannelURL(tt.base, "class-1")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.base)
				}
				return
			}
			if err != nil {
				t.Fatalf("liveChannelURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewSessionWiring(t *testing.T) {
	s, err := NewSession(SessionConfig{
		BaseURL:        "http://localhost:8080",
		Token:          "tok",
		ConversationID: "class-1",
		Viewer:         Viewer{ID: "acc-1", Name: "Bu Sari", Role: models.RoleTeacher},
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if s.Transport == nil || s.Loader == nil || s.Store == nil || s.Notices == nil || s.Delivery == nil {
		t.Fatal("session left a component unwired")
	}
	if s.Transport.Connected() {
		t.Error("session connected before Start")
	}
}
