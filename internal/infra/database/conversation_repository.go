package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type ConversationRepository struct {
	DB *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{DB: db}
}

// List pagina por número de página clásico (así lo pide el panel) y
// busca por remitente o contenido con ILIKE.
func (r *ConversationRepository) List(ctx context.Context, clientID, channel string, f entity.ConversationFilter) ([]entity.Conversation, *entity.Pagination, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}

	where := `
		WHERE client_id = $1
		  AND ($2 = '' OR channel = $2)
		  AND ($3::timestamptz IS NULL OR started_at >= $3)
		  AND ($4 = '' OR sender ILIKE '%' || $4 || '%' OR messages::text ILIKE '%' || $4 || '%')
	`

	var sinceArg any
	if !f.Since.IsZero() {
		sinceArg = f.Since
	}

	var total int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations `+where,
		clientID, channel, sinceArg, f.Search,
	).Scan(&total)
	if err != nil {
		return nil, nil, fmt.Errorf("error contando conversaciones: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT conversation_id, client_id, channel, sender, started_at, messages
		FROM conversations `+where+`
		ORDER BY started_at DESC
		LIMIT $5 OFFSET $6
	`, clientID, channel, sinceArg, f.Search, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, fmt.Errorf("error listando conversaciones: %w", err)
	}
	defer rows.Close()

	convs := []entity.Conversation{}
	for rows.Next() {
		var c entity.Conversation
		var messages []byte
		if err := rows.Scan(&c.ConversationID, &c.ClientID, &c.Channel, &c.Sender, &c.StartedAt, &messages); err != nil {
			return nil, nil, err
		}
		json.Unmarshal(messages, &c.Messages)
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	pagination := &entity.Pagination{
		HasMore: page*limit < total,
		Total:   total,
		Page:    page,
	}
	return convs, pagination, nil
}

func (r *ConversationRepository) FindByID(ctx context.Context, clientID, conversationID string) (*entity.Conversation, error) {
	var c entity.Conversation
	var messages []byte

	err := r.DB.QueryRowContext(ctx, `
		SELECT conversation_id, client_id, channel, sender, started_at, messages
		FROM conversations
		WHERE client_id = $1 AND conversation_id = $2
	`, clientID, conversationID).Scan(&c.ConversationID, &c.ClientID, &c.Channel, &c.Sender, &c.StartedAt, &messages)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	json.Unmarshal(messages, &c.Messages)
	return &c, nil
}
