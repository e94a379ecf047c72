package controller

import (
	"net/http"
	"strings"

	"github.com/Freeeeeet/library_service/internal/auth"
)

// identityHandler обработчик с уже проверенной личностью вызывающего
type identityHandler func(w http.ResponseWriter, r *http.Request, identity auth.Identity)

// withIdentity проверяет Bearer-токен и передаёт Identity в обработчик.
// Проверка ролей и владения — дело сервисов, здесь только аутентификация.
func (c *Controller) withIdentity(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: "missing bearer token"})
			return
		}

		identity, err := c.tokens.Parse(raw)
		if err != nil {
			c.writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: "invalid or expired token"})
			return
		}

		next(w, r, identity)
	}
}
