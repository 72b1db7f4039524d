package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/crm"
	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type AnalyticsRepository struct {
	DB *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// Quantitative carga las conversaciones del periodo y delega la
// agregación en el core. Para volúmenes de pyme va sobrado, y el
// handler cachea el resultado en Redis.
func (r *AnalyticsRepository) Quantitative(ctx context.Context, clientID, channel string, days int) (*entity.AnalyticsReport, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days+1).Truncate(24 * time.Hour)

	rows, err := r.DB.QueryContext(ctx, `
		SELECT conversation_id, client_id, channel, sender, started_at, messages
		FROM conversations
		WHERE client_id = $1
		  AND ($2 = '' OR channel = $2)
		  AND started_at >= $3
	`, clientID, channel, since)
	if err != nil {
		return nil, fmt.Errorf("error cargando conversaciones para analytics: %w", err)
	}
	defer rows.Close()

	convs := []entity.Conversation{}
	for rows.Next() {
		var c entity.Conversation
		var messages []byte
		if err := rows.Scan(&c.ConversationID, &c.ClientID, &c.Channel, &c.Sender, &c.StartedAt, &messages); err != nil {
			return nil, err
		}
		json.Unmarshal(messages, &c.Messages)
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return crm.ComputeAnalytics(convs, days, now), nil
}

// Qualitative lee el último snapshot que dejó el pipeline de análisis.
// Sin snapshot devolvemos un informe vacío, no un error: el panel
// simplemente pinta "sin datos".
func (r *AnalyticsRepository) Qualitative(ctx context.Context, clientID, channel string) (*entity.QualitativeReport, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT report FROM qualitative_reports
		WHERE client_id = $1 AND ($2 = '' OR channel = $2)
		ORDER BY generated_at DESC
		LIMIT 1
	`, clientID, channel).Scan(&raw)
	if err == sql.ErrNoRows {
		return &entity.QualitativeReport{
			MainTopics:        []entity.Topic{},
			ActionSuggestions: []string{},
			SentimentAnalysis: entity.Sentiment{Trend: "neutral"},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	var report entity.QualitativeReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("snapshot cualitativo corrupto para %s: %w", clientID, err)
	}
	return &report, nil
}
