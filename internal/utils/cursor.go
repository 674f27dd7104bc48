package utils

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cursor is a keyset position in a conversation's history: the (createdAt, id)
// pair of the oldest message already delivered. Pages are fetched strictly
// before this position. The wire form is opaque base64.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Encode renders the cursor in its opaque wire form.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d:%s", c.CreatedAt.UnixMicro(), c.ID)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an opaque cursor string. An empty input means
// "start from the newest message" and returns ok=false.
func DecodeCursor(s string) (Cursor, bool, error) {
	if s == "" {
		return Cursor{}, false, nil
	}

	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, false, fmt.Errorf("invalid cursor: %w", err)
	}

	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Cursor{}, false, fmt.Errorf("invalid cursor format")
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, false, fmt.Errorf("invalid cursor timestamp: %w", err)
	}

	return Cursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: parts[1]}, true, nil
}
