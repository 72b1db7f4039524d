package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
	"github.com/ia4pymes/chatbot-admin/internal/usecase"
)

type StageHandler struct {
	stageRepo entity.StageRepository
	saveUC    *usecase.SaveStageSettingsUseCase
}

func NewStageHandler(stageRepo entity.StageRepository, saveUC *usecase.SaveStageSettingsUseCase) *StageHandler {
	return &StageHandler{stageRepo: stageRepo, saveUC: saveUC}
}

type getStagesResponse struct {
	Success bool                   `json:"success"`
	Stages  []entity.PipelineStage `json:"crmStatuses"`
}

// Get atiende GET /api/crm/settings?clientId=
func (h *StageHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "clientId es obligatorio")
		return
	}

	stages, err := h.stageRepo.Get(r.Context(), clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error al cargar los estados")
		return
	}

	writeJSON(w, http.StatusOK, getStagesResponse{Success: true, Stages: stages})
}

// Save atiende PUT /api/crm/settings con {clientId, crmStatuses, migrations}.
func (h *StageHandler) Save(w http.ResponseWriter, r *http.Request) {
	var input usecase.SaveStagesInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	out, err := h.saveUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
