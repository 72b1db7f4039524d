package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type StageRepository struct {
	DB *sql.DB
}

func NewStageRepository(db *sql.DB) *StageRepository {
	return &StageRepository{DB: db}
}

// Get devuelve el pipeline del cliente. Si nunca lo ha tocado, los seis
// estados de serie.
func (r *StageRepository) Get(ctx context.Context, clientID string) ([]entity.PipelineStage, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx,
		`SELECT stages FROM crm_settings WHERE client_id = $1`, clientID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return entity.DefaultStages(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error leyendo los estados CRM: %w", err)
	}

	var stages []entity.PipelineStage
	if err := json.Unmarshal(raw, &stages); err != nil {
		return nil, fmt.Errorf("estados CRM corruptos para %s: %w", clientID, err)
	}
	if len(stages) == 0 {
		return entity.DefaultStages(), nil
	}
	return stages, nil
}

func (r *StageRepository) Save(ctx context.Context, clientID string, stages []entity.PipelineStage) error {
	raw, err := json.Marshal(stages)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO crm_settings (client_id, stages, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (client_id)
		DO UPDATE SET stages = EXCLUDED.stages, updated_at = NOW()
	`, clientID, raw)
	return err
}
