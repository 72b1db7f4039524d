package handlers

import (
	"net/http"
	"strconv"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

type HistoryHandler struct {
	convRepo entity.ConversationRepository
}

func NewHistoryHandler(convRepo entity.ConversationRepository) *HistoryHandler {
	return &HistoryHandler{convRepo: convRepo}
}

type historyResponse struct {
	Success       bool                  `json:"success"`
	Conversations []entity.Conversation `json:"conversations"`
	Pagination    *entity.Pagination    `json:"pagination"`
}

// List atiende GET /api/history?clientId=&channel=&page=&limit=&search=.
// Con conversationId= devuelve esa única conversación con sus mensajes,
// que es lo que pinta la ficha del lead.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("clientId")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}

	if conversationID := q.Get("conversationId"); conversationID != "" {
		h.findOne(w, r, clientID, conversationID)
		return
	}

	channel := q.Get("channel")
	if channel == "all" {
		channel = ""
	}

	filter := entity.ConversationFilter{Search: q.Get("search")}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	convs, pagination, err := h.convRepo.List(r.Context(), clientID, channel, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al cargar el historial")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Success:       true,
		Conversations: convs,
		Pagination:    pagination,
	})
}

type conversationResponse struct {
	Success      bool                 `json:"success"`
	Conversation *entity.Conversation `json:"conversation"`
}

func (h *HistoryHandler) findOne(w http.ResponseWriter, r *http.Request, clientID, conversationID string) {
	conv, err := h.convRepo.FindByID(r.Context(), clientID, conversationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al cargar la conversación")
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, "Conversación no encontrada")
		return
	}

	writeJSON(w, http.StatusOK, conversationResponse{Success: true, Conversation: conv})
}
