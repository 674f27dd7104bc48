package store

import (
	"context"

	"kelasku/server/internal/database"
	"kelasku/server/internal/models"
)

// ListMembers returns every participant of a conversation.
func ListMembers(ctx context.Context, conversationID string) ([]models.Member, error) {
	rows, err := database.Pool.Query(ctx, `
		SELECT u.id, u.name, u.role
		FROM conversation_members cm
		INNER JOIN users u ON cm.user_id = u.id
		WHERE cm.conversation_id = $1
		ORDER BY u.name
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// IsMember reports whether a user belongs to a conversation.
func IsMember(ctx context.Context, conversationID, userID string) (bool, error) {
	var exists bool
	err := database.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM conversation_members WHERE conversation_id = $1 AND user_id = $2)
	`, conversationID, userID).Scan(&exists)
	return exists, err
}
