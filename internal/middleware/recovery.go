package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
)

// RecoveryMiddleware panic recovery ve standart hata yanıtı
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error().
					Interface("panic", recovered).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("stack", string(debug.Stack())).
					Msg("🚨 Handler panic ile toparlandı")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success":   false,
					"error":     "Beklenmeyen bir hata oluştu",
					"code":      http.StatusInternalServerError,
					"timestamp": time.Now().Format(time.RFC3339),
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
