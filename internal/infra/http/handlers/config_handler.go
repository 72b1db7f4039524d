package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/mail"
	"github.com/ia4pymes/chatbot-admin/internal/usecase"
)

type ConfigHandler struct {
	configRepo entity.ConfigRepository
}

func NewConfigHandler(configRepo entity.ConfigRepository) *ConfigHandler {
	return &ConfigHandler{configRepo: configRepo}
}

type botConfigResponse struct {
	Success bool             `json:"success"`
	Config  entity.BotConfig `json:"config"`
}

// GetBotConfig atiende GET /api/config?clientId=&channel=
func (h *ConfigHandler) GetBotConfig(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID, channel := q.Get("clientId"), q.Get("channel")
	if clientID == "" || channel == "" {
		writeError(w, http.StatusBadRequest, "clientId y channel son obligatorios")
		return
	}

	cfg, err := h.configRepo.GetBotConfig(r.Context(), clientID, channel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al cargar la configuración")
		return
	}

	writeJSON(w, http.StatusOK, botConfigResponse{Success: true, Config: cfg})
}

type saveBotConfigRequest struct {
	ClientID string           `json:"clientId"`
	Channel  string           `json:"channel"`
	Config   entity.BotConfig `json:"config"`
}

// SaveBotConfig atiende POST /api/config. La config llegada se funde
// sobre la guardada: los campos que el panel no manda se conservan.
func (h *ConfigHandler) SaveBotConfig(w http.ResponseWriter, r *http.Request) {
	var req saveBotConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.ClientID == "" || req.Channel == "" {
		writeError(w, http.StatusBadRequest, "clientId y channel son obligatorios")
		return
	}

	current, err := h.configRepo.GetBotConfig(r.Context(), req.ClientID, req.Channel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al cargar la configuración")
		return
	}
	for k, v := range req.Config {
		current[k] = v
	}

	if err := h.configRepo.SaveBotConfig(r.Context(), req.ClientID, req.Channel, current); err != nil {
		writeError(w, http.StatusInternalServerError, "Error al guardar la configuración")
		return
	}

	writeJSON(w, http.StatusOK, botConfigResponse{Success: true, Config: current})
}

// GetEmailCredentials atiende GET /api/config/email?clientId=
func (h *ConfigHandler) GetEmailCredentials(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}

	creds, err := h.configRepo.GetEmailCredentials(r.Context(), clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al cargar las credenciales")
		return
	}

	// nunca devolvemos la contraseña al navegador
	creds.SMTPPassword = ""
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "credentials": creds})
}

type saveEmailCredentialsRequest struct {
	ClientID    string                   `json:"clientId"`
	Credentials entity.EmailCredentials  `json:"credentials"`
}

// SaveEmailCredentials atiende POST /api/config/email
func (h *ConfigHandler) SaveEmailCredentials(w http.ResponseWriter, r *http.Request) {
	var req saveEmailCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}
	if errs := usecase.ValidateStruct(req.Credentials); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, errs[0].Error())
		return
	}

	if err := h.configRepo.SaveEmailCredentials(r.Context(), req.ClientID, &req.Credentials); err != nil {
		writeError(w, http.StatusInternalServerError, "Error al guardar las credenciales")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// TestEmailCredentials atiende POST /api/config/email/test: manda un
// correo de prueba con las credenciales guardadas.
func (h *ConfigHandler) TestEmailCredentials(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID string `json:"clientId"`
		To       string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}

	creds, err := h.configRepo.GetEmailCredentials(r.Context(), req.ClientID)
	if err != nil || creds.SMTPHost == "" {
		writeError(w, http.StatusBadRequest, "No hay credenciales SMTP configuradas")
		return
	}

	to := req.To
	if to == "" {
		to = creds.EmailToAutomate
	}

	if err := mail.SendTest(creds, to); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetWhatsAppCredentials atiende GET /api/config/whatsapp?clientId=
func (h *ConfigHandler) GetWhatsAppCredentials(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}

	creds, err := h.configRepo.GetWhatsAppCredentials(r.Context(), clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al cargar las credenciales")
		return
	}

	creds.TwilioAuthToken = ""
	creds.MetaAccessToken = ""
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "credentials": creds})
}

type saveWhatsAppCredentialsRequest struct {
	ClientID    string                     `json:"clientId"`
	Credentials entity.WhatsAppCredentials `json:"credentials"`
}

// SaveWhatsAppCredentials atiende POST /api/config/whatsapp
func (h *ConfigHandler) SaveWhatsAppCredentials(w http.ResponseWriter, r *http.Request) {
	var req saveWhatsAppCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}
	if errs := usecase.ValidateStruct(req.Credentials); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, errs[0].Error())
		return
	}

	if err := h.configRepo.SaveWhatsAppCredentials(r.Context(), req.ClientID, &req.Credentials); err != nil {
		writeError(w, http.StatusInternalServerError, "Error al guardar las credenciales")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
