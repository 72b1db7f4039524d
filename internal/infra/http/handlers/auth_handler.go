package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ia4pymes/chatbot-admin/internal/usecase"
)

type AuthHandler struct {
	loginUC     *usecase.LoginUseCase
	rateLimiter *RateLimiter
}

func NewAuthHandler(loginUC *usecase.LoginUseCase) *AuthHandler {
	return &AuthHandler{
		loginUC:     loginUC,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 intentos/min por IP
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "Demasiados intentos. Espera un momento.")
		return
	}

	var input usecase.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	out, err := h.loginUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
