package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/interfaces"
	"github.com/finalxcard/invest-api/internal/middleware"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/services"
)

// ReferralHandler binary ağaç HTTP isteklerini yönetir
type ReferralHandler struct {
	treeService interfaces.TreeServiceInterface
	payoutQueue *services.PayoutQueue
}

// NewReferralHandler yeni handler oluşturur
func NewReferralHandler(treeService interfaces.TreeServiceInterface, payoutQueue *services.PayoutQueue) *ReferralHandler {
	return &ReferralHandler{
		treeService: treeService,
		payoutQueue: payoutQueue,
	}
}

// Place kullanıcıyı ağaca yerleştirir
// Yerleştirilen kullanıcının mevcut hacmi varsa ata zinciri için
// payout yürüyüşü tetiklenir
func (h *ReferralHandler) Place(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	var req models.PlaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	// Yerleştirilen kullanıcı istek sahibidir
	req.UserID = claims.UserID

	edge, err := h.treeService.Place(&req)
	if err != nil {
		log.Warn().Err(err).Int("user_id", claims.UserID).Msg("Ağaca yerleştirme başarısız")
		writeError(w, err)
		return
	}

	payout := <-h.payoutQueue.AddJob(claims.UserID)
	if payout.Error != nil {
		log.Error().Err(payout.Error).Int("user_id", claims.UserID).Msg("Payout yürüyüşü başarısız")
	}

	data := map[string]interface{}{
		"referral": edge,
	}
	if payout.Result != nil {
		data["payout"] = payout.Result
	}

	writeSuccess(w, http.StatusCreated, data, "Kullanıcı ağaca yerleştirildi")
}

// GetTree kullanıcının alt ağacını render eder
func (h *ReferralHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	depth := 3
	if depthStr := r.URL.Query().Get("depth"); depthStr != "" {
		if parsed, err := strconv.Atoi(depthStr); err == nil && parsed > 0 && parsed <= 10 {
			depth = parsed
		}
	}

	tree, err := h.treeService.RenderTree(claims.UserID, depth)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tree, "Ağaç getirildi")
}

// GetUpline kullanıcının köke kadar olan ata zincirini döner
func (h *ReferralHandler) GetUpline(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	upline, err := h.treeService.GetUpline(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"upline": upline,
		"levels": len(upline),
	}, "Ata zinciri getirildi")
}

// GetStats kullanıcının bacak istatistiklerini döner
func (h *ReferralHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	stats, err := h.treeService.GetSubtreeStats(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats, "Referans istatistikleri getirildi")
}
