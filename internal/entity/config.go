package entity

import "context"

// BotConfig is the per-client, per-channel assistant configuration. The
// dashboard treats it as an open object (merge on load), so it is stored
// as-is instead of being forced through a fixed schema.
type BotConfig map[string]any

// EmailCredentials configura el canal de email (SMTP genérico).
type EmailCredentials struct {
	EmailToAutomate string `json:"emailToAutomate" validate:"omitempty,email"`
	SMTPHost        string `json:"smtpHost" validate:"required"`
	SMTPPort        string `json:"smtpPort" validate:"required,number"`
	SMTPUser        string `json:"smtpUser"`
	SMTPPassword    string `json:"smtpPassword"`
	FromName        string `json:"fromName"`
}

// WhatsAppCredentials configura el canal de WhatsApp (Twilio o Meta Cloud API).
type WhatsAppCredentials struct {
	Provider string `json:"provider" validate:"required,oneof=twilio meta"`

	TwilioAccountSID     string `json:"twilioAccountSid"`
	TwilioAuthToken      string `json:"twilioAuthToken"`
	TwilioWhatsAppNumber string `json:"twilioWhatsappNumber"`

	MetaAccessToken       string `json:"metaAccessToken"`
	MetaPhoneNumberID     string `json:"metaPhoneNumberId"`
	MetaBusinessAccountID string `json:"metaBusinessAccountId"`
	MetaVerifyToken       string `json:"metaVerifyToken"`
}

type ConfigRepository interface {
	GetBotConfig(ctx context.Context, clientID, channel string) (BotConfig, error)
	SaveBotConfig(ctx context.Context, clientID, channel string, cfg BotConfig) error
	GetEmailCredentials(ctx context.Context, clientID string) (*EmailCredentials, error)
	SaveEmailCredentials(ctx context.Context, clientID string, creds *EmailCredentials) error
	GetWhatsAppCredentials(ctx context.Context, clientID string) (*WhatsAppCredentials, error)
	SaveWhatsAppCredentials(ctx context.Context, clientID string, creds *WhatsAppCredentials) error
}
