package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

func (r *DocumentRepository) List(ctx context.Context, clientID, channel string) ([]entity.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT file_name, file_size, content_type, channel, uploaded_at
		FROM documents
		WHERE client_id = $1 AND ($2 = '' OR channel = $2)
		ORDER BY uploaded_at DESC
	`, clientID, channel)
	if err != nil {
		return nil, fmt.Errorf("error listando documentos: %w", err)
	}
	defer rows.Close()

	docs := []entity.Document{}
	for rows.Next() {
		var d entity.Document
		if err := rows.Scan(&d.FileName, &d.FileSize, &d.ContentType, &d.Channel, &d.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) Save(ctx context.Context, clientID string, doc *entity.Document) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO documents (client_id, channel, file_name, file_size, content_type, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_id, channel, file_name)
		DO UPDATE SET file_size = EXCLUDED.file_size,
			content_type = EXCLUDED.content_type,
			uploaded_at = EXCLUDED.uploaded_at
	`, clientID, doc.Channel, doc.FileName, doc.FileSize, doc.ContentType, doc.UploadedAt)
	return err
}

func (r *DocumentRepository) Delete(ctx context.Context, clientID, channel, fileName string) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM documents
		WHERE client_id = $1 AND channel = $2 AND file_name = $3
	`, clientID, channel, fileName)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("documento no encontrado: %s", fileName)
	}
	return nil
}
