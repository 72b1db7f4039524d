package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/crm"
	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/storage"
)

// Client es el cliente tipado del gateway del panel.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError es cualquier respuesta no-2xx del gateway.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway %d: %s", e.Status, e.Message)
}

type LoginResult struct {
	Token          string                 `json:"token"`
	ClientID       string                 `json:"clientId"`
	Username       string                 `json:"username"`
	Email          string                 `json:"email"`
	AccountType    string                 `json:"accountType"`
	ManagedClients []entity.ManagedClient `json:"managedClients"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

type LeadQuery struct {
	ClientID string
	Channel  string
	Days     int
	LastKey  string
	Limit    int
}

type LeadsPage struct {
	Leads   []entity.Lead       `json:"leads"`
	Summary *entity.LeadSummary `json:"summary"`
	HasMore bool                `json:"hasMore"`
	NextKey string              `json:"nextKey"`
}

func (c *Client) Leads(ctx context.Context, q LeadQuery) (*LeadsPage, error) {
	params := url.Values{}
	params.Set("clientId", q.ClientID)
	if q.Channel != "" {
		params.Set("channel", q.Channel)
	}
	if q.Days > 0 {
		params.Set("days", strconv.Itoa(q.Days))
	}
	if q.LastKey != "" {
		params.Set("lastKey", q.LastKey)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var out LeadsPage
	if err := c.do(ctx, http.MethodGet, "/api/leads", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MutationEnvelope es el sobre que entiende POST /api/leads/update.
type MutationEnvelope struct {
	ClientID string         `json:"clientId"`
	Channel  string         `json:"channel"`
	LeadID   string         `json:"leadId"`
	Action   crm.Action     `json:"action"`
	Data     crm.ActionData `json:"data"`
}

type MutationResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Lead    *entity.Lead `json:"lead"`
}

func (c *Client) MutateLead(ctx context.Context, env MutationEnvelope) (*MutationResult, error) {
	var out MutationResult
	if err := c.do(ctx, http.MethodPost, "/api/leads/update", nil, env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLead(ctx context.Context, clientID, channel, leadID string) error {
	params := url.Values{}
	params.Set("clientId", clientID)
	params.Set("channel", channel)
	params.Set("leadId", leadID)
	return c.do(ctx, http.MethodDelete, "/api/leads", params, nil, nil)
}

func (c *Client) Stages(ctx context.Context, clientID string) ([]entity.PipelineStage, error) {
	params := url.Values{}
	params.Set("clientId", clientID)

	var out struct {
		Stages []entity.PipelineStage `json:"crmStatuses"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/crm/settings", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Stages, nil
}

type SaveStagesRequest struct {
	ClientID   string                  `json:"clientId"`
	Stages     []entity.PipelineStage  `json:"crmStatuses"`
	Migrations []entity.StageMigration `json:"migrations,omitempty"`
}

type SaveStagesResult struct {
	Success  bool                   `json:"success"`
	Stages   []entity.PipelineStage `json:"crmStatuses"`
	Migrated int64                  `json:"migratedLeads"`
}

func (c *Client) SaveStages(ctx context.Context, req SaveStagesRequest) (*SaveStagesResult, error) {
	var out SaveStagesResult
	if err := c.do(ctx, http.MethodPut, "/api/crm/settings", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type HistoryQuery struct {
	ClientID string
	Channel  string
	Page     int
	Limit    int
	Search   string
}

type HistoryPage struct {
	Conversations []entity.Conversation `json:"conversations"`
	Pagination    *entity.Pagination    `json:"pagination"`
}

func (c *Client) History(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	params := url.Values{}
	params.Set("clientId", q.ClientID)
	if q.Channel != "" {
		params.Set("channel", q.Channel)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	var out HistoryPage
	if err := c.do(ctx, http.MethodGet, "/api/history", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Analytics(ctx context.Context, clientID, channel string, days int) (*entity.AnalyticsReport, error) {
	params := url.Values{}
	params.Set("clientId", clientID)
	if channel != "" {
		params.Set("channel", channel)
	}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}

	var out struct {
		Data *entity.AnalyticsReport `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/analytics", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Conversation trae una conversación concreta con sus mensajes, la que
// enlaza la ficha del lead.
func (c *Client) Conversation(ctx context.Context, clientID, conversationID string) (*entity.Conversation, error) {
	params := url.Values{}
	params.Set("clientId", clientID)
	params.Set("conversationId", conversationID)

	var out struct {
		Conversation *entity.Conversation `json:"conversation"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/history", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Conversation, nil
}

func (c *Client) Documents(ctx context.Context, clientID, channel string) ([]entity.Document, error) {
	params := url.Values{}
	params.Set("clientId", clientID)
	if channel != "" {
		params.Set("channel", channel)
	}

	var out struct {
		Documents []entity.Document `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/documents", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

type PresignRequest struct {
	ClientID    string `json:"clientId"`
	Channel     string `json:"channel"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
}

// PresignDocument registra el documento y devuelve el POST prefirmado
// con el que subir el fichero directo al bucket.
func (c *Client) PresignDocument(ctx context.Context, req PresignRequest) (*storage.UploadTicket, error) {
	var out struct {
		Upload *storage.UploadTicket `json:"upload"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/documents/presign", nil, req, &out); err != nil {
		return nil, err
	}
	return out.Upload, nil
}

func (c *Client) DeleteDocument(ctx context.Context, clientID, channel, fileName string) error {
	params := url.Values{}
	params.Set("clientId", clientID)
	params.Set("channel", channel)
	params.Set("fileName", fileName)
	return c.do(ctx, http.MethodDelete, "/api/documents", params, nil, nil)
}

func (c *Client) BotConfig(ctx context.Context, clientID, channel string) (entity.BotConfig, error) {
	params := url.Values{}
	params.Set("clientId", clientID)
	params.Set("channel", channel)

	var out struct {
		Config entity.BotConfig `json:"config"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/config", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Config, nil
}

// SaveBotConfig manda solo los campos tocados; el gateway los funde
// sobre la config guardada y devuelve el resultado completo.
func (c *Client) SaveBotConfig(ctx context.Context, clientID, channel string, cfg entity.BotConfig) (entity.BotConfig, error) {
	body := map[string]any{"clientId": clientID, "channel": channel, "config": cfg}

	var out struct {
		Config entity.BotConfig `json:"config"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/config", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Config, nil
}

// EmailCredentials llega con la contraseña SMTP en blanco: el gateway
// nunca la devuelve.
func (c *Client) EmailCredentials(ctx context.Context, clientID string) (*entity.EmailCredentials, error) {
	params := url.Values{}
	params.Set("clientId", clientID)

	var out struct {
		Credentials *entity.EmailCredentials `json:"credentials"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/config/email", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Credentials, nil
}

func (c *Client) SaveEmailCredentials(ctx context.Context, clientID string, creds *entity.EmailCredentials) error {
	body := map[string]any{"clientId": clientID, "credentials": creds}
	return c.do(ctx, http.MethodPost, "/api/config/email", nil, body, nil)
}

// TestEmailCredentials pide al gateway un correo de prueba con las
// credenciales SMTP guardadas. Con to vacío usa el buzón automatizado.
func (c *Client) TestEmailCredentials(ctx context.Context, clientID, to string) error {
	body := map[string]string{"clientId": clientID, "to": to}
	return c.do(ctx, http.MethodPost, "/api/config/email/test", nil, body, nil)
}

// WhatsAppCredentials llega con los tokens en blanco, igual que las de email.
func (c *Client) WhatsAppCredentials(ctx context.Context, clientID string) (*entity.WhatsAppCredentials, error) {
	params := url.Values{}
	params.Set("clientId", clientID)

	var out struct {
		Credentials *entity.WhatsAppCredentials `json:"credentials"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/config/whatsapp", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Credentials, nil
}

func (c *Client) SaveWhatsAppCredentials(ctx context.Context, clientID string, creds *entity.WhatsAppCredentials) error {
	body := map[string]any{"clientId": clientID, "credentials": creds}
	return c.do(ctx, http.MethodPost, "/api/config/whatsapp", nil, body, nil)
}

func (c *Client) Qualitative(ctx context.Context, clientID, channel string) (*entity.QualitativeReport, error) {
	params := url.Values{}
	params.Set("clientId", clientID)
	if channel != "" {
		params.Set("channel", channel)
	}

	var out struct {
		Data *entity.QualitativeReport `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/analytics/qualitative", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		raw, _ := io.ReadAll(resp.Body)
		json.Unmarshal(raw, &apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = string(raw)
		}
		return &APIError{Status: resp.StatusCode, Code: apiErr.Code, Message: msg}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
