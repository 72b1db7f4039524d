package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ia4pymes/chatbot-admin/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// JWTAuth exige un Bearer token firmado por nosotros en todas las
// rutas del gateway salvo login, health y métricas.
func JWTAuth(mgr *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "falta el token de autenticación")
				return
			}

			claims, err := mgr.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, "token inválido o caducado")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"error":"` + msg + `"}`))
}

// ClaimsFrom saca las claims que dejó JWTAuth en el contexto.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}
