package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"kelasku/server/internal/database"
	"kelasku/server/internal/models"
	"kelasku/server/internal/utils"
)

// Sender is the authenticated identity a message is written under.
type Sender struct {
	ID   string
	Name string
	Role models.Role
}

// InsertMessage persists a draft and returns the authoritative message with
// its server-assigned id and timestamp. senderName is snapshotted here and
// never re-resolved.
func InsertMessage(ctx context.Context, conversationID string, sender Sender, draft models.Draft) (*models.Message, error) {
	msg := &models.Message{
		ID:              uuid.New().String(),
		ConversationID:  conversationID,
		SenderID:        sender.ID,
		SenderType:      models.SenderTypeForRole(sender.Role),
		SenderRole:      sender.Role,
		SenderName:      sender.Name,
		Type:            draft.Type,
		Content:         draft.Content,
		Metadata:        draft.Metadata,
		TargetStudentID: draft.TargetStudentID,
		FileID:          draft.FileID,
		FileName:        draft.FileName,
		FileMimeType:    draft.FileMimeType,
		FileSize:        draft.FileSize,
		CreatedAt:       time.Now().UTC(),
	}

	_, err := database.Pool.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, sender_type, sender_role, sender_name,
			type, content, metadata, target_student_id, file_id, file_name, file_mime_type, file_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.SenderType, msg.SenderRole, msg.SenderName,
		msg.Type, msg.Content, msg.Metadata, msg.TargetStudentID,
		msg.FileID, msg.FileName, msg.FileMimeType, msg.FileSize, msg.CreatedAt)

	if err != nil {
		return nil, err
	}

	return msg, nil
}

// HistoryPage returns up to limit messages strictly older than the cursor
// position, newest-first, plus whether older messages remain beyond the page.
func HistoryPage(ctx context.Context, conversationID string, cursor *utils.Cursor, limit int) ([]models.Message, bool, error) {
	query := `
		SELECT id, conversation_id, sender_id, sender_type, sender_role, sender_name,
			type, content, metadata, target_student_id, file_id, file_name, file_mime_type, file_size, created_at
		FROM messages
		WHERE conversation_id = $1`
	args := []any{conversationID}

	if cursor != nil {
		// Keyset: strictly before (created_at, id)
		query += ` AND (created_at, id) < ($2, $3)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}

	// Fetch one extra row to compute hasMore without a COUNT
	query += ` ORDER BY created_at DESC, id DESC LIMIT ` + strconv.Itoa(limit+1)

	rows, err := database.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.SenderType, &m.SenderRole, &m.SenderName,
			&m.Type, &m.Content, &m.Metadata, &m.TargetStudentID,
			&m.FileID, &m.FileName, &m.FileMimeType, &m.FileSize, &m.CreatedAt,
		)
		if err != nil {
			return nil, false, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := false
	if len(messages) > limit {
		hasMore = true
		messages = messages[:limit]
	}

	return messages, hasMore, nil
}
