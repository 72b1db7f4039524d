package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type ConfigRepository struct {
	DB *sql.DB
}

func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{DB: db}
}

func (r *ConfigRepository) GetBotConfig(ctx context.Context, clientID, channel string) (entity.BotConfig, error) {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT config FROM bot_configs
		WHERE client_id = $1 AND channel = $2
	`, clientID, channel).Scan(&raw)
	if err == sql.ErrNoRows {
		return entity.BotConfig{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg entity.BotConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config del bot corrupta para %s/%s: %w", clientID, channel, err)
	}
	return cfg, nil
}

func (r *ConfigRepository) SaveBotConfig(ctx context.Context, clientID, channel string, cfg entity.BotConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO bot_configs (client_id, channel, config, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (client_id, channel)
		DO UPDATE SET config = EXCLUDED.config, updated_at = NOW()
	`, clientID, channel, raw)
	return err
}

func (r *ConfigRepository) GetEmailCredentials(ctx context.Context, clientID string) (*entity.EmailCredentials, error) {
	var creds entity.EmailCredentials
	if err := r.getCredentials(ctx, clientID, "email", &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (r *ConfigRepository) SaveEmailCredentials(ctx context.Context, clientID string, creds *entity.EmailCredentials) error {
	return r.saveCredentials(ctx, clientID, "email", creds)
}

func (r *ConfigRepository) GetWhatsAppCredentials(ctx context.Context, clientID string) (*entity.WhatsAppCredentials, error) {
	var creds entity.WhatsAppCredentials
	if err := r.getCredentials(ctx, clientID, "whatsapp", &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (r *ConfigRepository) SaveWhatsAppCredentials(ctx context.Context, clientID string, creds *entity.WhatsAppCredentials) error {
	return r.saveCredentials(ctx, clientID, "whatsapp", creds)
}

func (r *ConfigRepository) getCredentials(ctx context.Context, clientID, kind string, out any) error {
	var raw []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT credentials FROM channel_credentials
		WHERE client_id = $1 AND kind = $2
	`, clientID, kind).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil // credenciales sin configurar: struct a cero
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (r *ConfigRepository) saveCredentials(ctx context.Context, clientID, kind string, creds any) error {
	raw, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO channel_credentials (client_id, kind, credentials, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (client_id, kind)
		DO UPDATE SET credentials = EXCLUDED.credentials, updated_at = NOW()
	`, clientID, kind, raw)
	return err
}
