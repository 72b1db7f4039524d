package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/http/middleware"
	"github.com/ia4pymes/chatbot-admin/internal/usecase"
)

type LeadHandler struct {
	leadRepo    entity.LeadRepository
	mutateUC    *usecase.MutateLeadUseCase
	deleteUC    *usecase.DeleteLeadUseCase
	rateLimiter *RateLimiter
}

func NewLeadHandler(leadRepo entity.LeadRepository, mutateUC *usecase.MutateLeadUseCase, deleteUC *usecase.DeleteLeadUseCase) *LeadHandler {
	return &LeadHandler{
		leadRepo:    leadRepo,
		mutateUC:    mutateUC,
		deleteUC:    deleteUC,
		rateLimiter: NewRateLimiter(60, time.Minute), // 60 mutaciones/min por IP
	}
}

type listLeadsResponse struct {
	Success bool                `json:"success"`
	Leads   []entity.Lead       `json:"leads"`
	Summary *entity.LeadSummary `json:"summary"`
	HasMore bool                `json:"hasMore"`
	NextKey string              `json:"nextKey,omitempty"`
}

// List atiende GET /api/leads?clientId=&days=&channel=&lastKey=&limit=
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("clientId")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}

	channel := q.Get("channel")
	if channel == "all" {
		channel = ""
	}

	var since time.Time
	if days, err := strconv.Atoi(q.Get("days")); err == nil && days > 0 {
		since = time.Now().UTC().AddDate(0, 0, -days)
	}

	limit, _ := strconv.Atoi(q.Get("limit"))

	page, err := h.leadRepo.List(r.Context(), clientID, channel, since, q.Get("lastKey"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al cargar los leads")
		return
	}

	// el resumen cuenta el periodo completo, no solo la página visible
	summary, err := h.leadRepo.Summary(r.Context(), clientID, channel, since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al calcular el resumen")
		return
	}

	writeJSON(w, http.StatusOK, listLeadsResponse{
		Success: true,
		Leads:   page.Leads,
		Summary: summary,
		HasMore: page.HasMore,
		NextKey: page.NextKey,
	})
}

// Mutate atiende POST /api/leads/update con el sobre de mutación.
func (h *LeadHandler) Mutate(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "Demasiadas peticiones. Espera un momento.")
		return
	}

	var input usecase.MutateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	out, err := h.mutateUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordLeadMutation(string(input.Action))
	writeJSON(w, http.StatusOK, out)
}

// Delete atiende DELETE /api/leads?clientId=&channel=&leadId=
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := usecase.DeleteLeadInput{
		ClientID: q.Get("clientId"),
		Channel:  q.Get("channel"),
		LeadID:   q.Get("leadId"),
	}

	if err := h.deleteUC.Execute(r.Context(), input); err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
