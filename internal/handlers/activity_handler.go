package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/interfaces"
	"github.com/finalxcard/invest-api/internal/middleware"
	"github.com/finalxcard/invest-api/internal/models"
)

// ActivityHandler bakiye hareketi HTTP isteklerini yönetir
type ActivityHandler struct {
	activityService interfaces.ActivityServiceInterface
}

// NewActivityHandler yeni handler oluşturur
func NewActivityHandler(activityService interfaces.ActivityServiceInterface) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// GetBalances kullanıcının bakiye özetini döner
func (h *ActivityHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	user, err := h.activityService.GetBalances(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"main_balance":             user.MainBalance,
		"profit_balance":           user.ProfitBalance,
		"referral_balance":         user.ReferralBalance,
		"bonus_balance":            user.BonusBalance,
		"max_cap_balance":          user.MaxCapBalance,
		"withdrawal_total_balance": user.WithdrawalTotalBalance,
	}, "Bakiyeler getirildi")
}

// Transfer kazanç bakiyesinden ana bakiyeye aktarım endpoint'i
func (h *ActivityHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	var req models.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	transaction, err := h.activityService.TransferToMain(claims.UserID, &req)
	if err != nil {
		log.Warn().Err(err).Int("user_id", claims.UserID).Msg("Transfer başarısız")
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, transaction, "Transfer tamamlandı")
}

// Withdraw para çekme talebi endpoint'i
func (h *ActivityHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	var req models.WithdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	transaction, err := h.activityService.RequestWithdrawal(claims.UserID, &req)
	if err != nil {
		log.Warn().Err(err).Int("user_id", claims.UserID).Msg("Çekim talebi başarısız")
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, transaction, "Çekim talebi alındı")
}

// GetHistory kullanıcının işlem geçmişini döner
func (h *ActivityHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	limit := 20
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	transactions, err := h.activityService.GetHistory(claims.UserID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
		"count":        len(transactions),
	}, "İşlem geçmişi getirildi")
}
