package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/crm"
	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/infra/http/middleware"
)

type ExportHandler struct {
	leadRepo entity.LeadRepository
}

func NewExportHandler(leadRepo entity.LeadRepository) *ExportHandler {
	return &ExportHandler{leadRepo: leadRepo}
}

// Export atiende GET /api/leads/export?format=csv|xlsx más los mismos
// filtros del tablero (clientId, days, channel, temperature, status,
// search). Exporta la vista filtrada, no la página visible.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("clientId")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}

	format := q.Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "formato no soportado: "+format)
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

	// paginamos por dentro hasta agotar el periodo
	leads := []entity.Lead{}
	lastKey := ""
	for {
		page, err := h.leadRepo.List(r.Context(), clientID, channel, since, lastKey, 500)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Error al cargar los leads")
			return
		}
		leads = append(leads, page.Leads...)
		if !page.HasMore {
			break
		}
		lastKey = page.NextKey
	}

	leads = crm.FilterLeads(leads, crm.LeadFilter{
		Temperature: q.Get("temperature"),
		Status:      q.Get("status"),
		Search:      q.Get("search"),
	})

	fileName := crm.ExportFileName(format, time.Now().UTC())
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)

	var err error
	if format == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = crm.WriteXLSX(w, leads)
	} else {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = crm.WriteCSV(w, leads)
	}
	if err != nil {
		// las cabeceras ya salieron, solo queda dejar constancia
		writeError(w, http.StatusInternalServerError, "Error al generar el fichero")
		return
	}

	middleware.RecordExport(format)
}
