package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/cache"
)

type AnalyticsHandler struct {
	analyticsRepo entity.AnalyticsRepository
	cache         *cache.Cache
}

func NewAnalyticsHandler(analyticsRepo entity.AnalyticsRepository, c *cache.Cache) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsRepo: analyticsRepo, cache: c}
}

type analyticsResponse struct {
	Success bool                    `json:"success"`
	Data    *entity.AnalyticsReport `json:"data"`
}

type qualitativeResponse struct {
	Success bool                      `json:"success"`
	Data    *entity.QualitativeReport `json:"data"`
}

// Quantitative atiende GET /api/analytics?clientId=&channel=&days=
func (h *AnalyticsHandler) Quantitative(w http.ResponseWriter, r *http.Request) {
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
	days, _ := strconv.Atoi(q.Get("days"))
	if days <= 0 {
		days = 7
	}

	key := cache.AnalyticsKey(clientID, channel, days)
	if h.cache != nil {
		var cached entity.AnalyticsReport
		if found, err := h.cache.GetJSON(r.Context(), key, &cached); err == nil && found {
			writeJSON(w, http.StatusOK, analyticsResponse{Success: true, Data: &cached})
			return
		}
	}

	report, err := h.analyticsRepo.Quantitative(r.Context(), clientID, channel, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al calcular analytics")
		return
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(r.Context(), key, report); err != nil {
			log.Printf("⚠️ analytics no cacheado (%s): %v", key, err)
		}
	}

	writeJSON(w, http.StatusOK, analyticsResponse{Success: true, Data: report})
}

// Qualitative atiende GET /api/analytics/qualitative?clientId=&channel=
func (h *AnalyticsHandler) Qualitative(w http.ResponseWriter, r *http.Request) {
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

	key := cache.QualitativeKey(clientID, channel)
	if h.cache != nil {
		var cached entity.QualitativeReport
		if found, err := h.cache.GetJSON(r.Context(), key, &cached); err == nil && found {
			writeJSON(w, http.StatusOK, qualitativeResponse{Success: true, Data: &cached})
			return
		}
	}

	report, err := h.analyticsRepo.Qualitative(r.Context(), clientID, channel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al cargar el informe cualitativo")
		return
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(r.Context(), key, report); err != nil {
			log.Printf("⚠️ informe cualitativo no cacheado (%s): %v", key, err)
		}
	}

	writeJSON(w, http.StatusOK, qualitativeResponse{Success: true, Data: report})
}
