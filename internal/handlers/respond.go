package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/apperrors"
)

// writeSuccess standart başarı yanıtı yazar
func writeSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
		"message": message,
	})
}

// writeError hatayı sınıfına uygun HTTP koduyla yazar
// Sınıflandırılmamış hatalar 500 olarak döner ve detayı gizlenir
func writeError(w http.ResponseWriter, err error) {
	status := apperrors.StatusOf(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Beklenmeyen handler hatası")
		message = "Beklenmeyen bir hata oluştu"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
		"code":    status,
	})
}

// decodeJSON request body'sini parse eder
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidInput("geçersiz JSON formatı")
	}
	return nil
}
