package store

import (
	"context"
	"time"

	"kelasku/server/internal/database"
	"kelasku/server/internal/models"
)

// InsertFile records uploaded-file metadata.
func InsertFile(ctx context.Context, f *models.StoredFile) error {
	f.CreatedAt = time.Now().UTC()
	_, err := database.Pool.Exec(ctx, `
		INSERT INTO files (id, name, mime_type, size, path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, f.ID, f.Name, f.MimeType, f.Size, f.Path, f.CreatedAt)
	return err
}

// GetFile looks up stored-file metadata by id.
func GetFile(ctx context.Context, fileID string) (*models.StoredFile, error) {
	var f models.StoredFile
	err := database.Pool.QueryRow(ctx, `
		SELECT id, name, mime_type, size, path, created_at FROM files WHERE id = $1
	`, fileID).Scan(&f.ID, &f.Name, &f.MimeType, &f.Size, &f.Path, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
