package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/interfaces"
	"github.com/finalxcard/invest-api/internal/middleware"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/services"
)

// InvestmentHandler yatırım HTTP isteklerini yönetir
// Service bağımlılığı interface üzerinden alınır, testlerde sahte service takılabilir
type InvestmentHandler struct {
	investmentService interfaces.InvestmentServiceInterface
	payoutQueue       *services.PayoutQueue
}

// NewInvestmentHandler yeni handler oluşturur
func NewInvestmentHandler(investmentService interfaces.InvestmentServiceInterface, payoutQueue *services.PayoutQueue) *InvestmentHandler {
	return &InvestmentHandler{
		investmentService: investmentService,
		payoutQueue:       payoutQueue,
	}
}

// Create yatırım açma/yükseltme endpoint'i
// Yatırım commit edildikten sonra payout yürüyüşü queue üzerinden işlenir
// ve sonucu yanıta eklenir
func (h *InvestmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	var req models.CreateInvestmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.investmentService.OpenOrUpgrade(claims.UserID, &req)
	if err != nil {
		log.Warn().Err(err).Int("user_id", claims.UserID).Msg("Yatırım işlenemedi")
		writeError(w, err)
		return
	}

	// Yeni hacim ata zincirinde eşleşme yaratmış olabilir
	payout := <-h.payoutQueue.AddJob(claims.UserID)
	if payout.Error != nil {
		// Yatırım commit edildi; payout hatası yanıtı bozmaz, sonraki
		// hacim girişindeki yürüyüş kalan eşleşmeyi yakalar
		log.Error().Err(payout.Error).Int("user_id", claims.UserID).Msg("Payout yürüyüşü başarısız")
	}

	data := map[string]interface{}{
		"investment": result.Investment,
		"tier":       result.TierName,
		"upgraded":   result.Upgraded,
	}
	if payout.Result != nil {
		data["payout"] = payout.Result
	}

	message := "Yatırım başarıyla oluşturuldu"
	if result.Upgraded {
		message = "Yatırım başarıyla yükseltildi"
	}

	writeSuccess(w, http.StatusCreated, data, message)
}

// GetActive kullanıcının aktif yatırımını döner
func (h *InvestmentHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	investment, err := h.investmentService.GetActive(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, investment, "Aktif yatırım getirildi")
}

// List kullanıcının yatırım geçmişini döner
func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	investments, err := h.investmentService.GetUserInvestments(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"investments": investments,
		"count":       len(investments),
	}, "Yatırım geçmişi getirildi")
}

// Cancel aktif yatırımı iptal eder
// İptal bacak hacmini düşürdüğü için ata zinciri yeniden yürünür;
// sayaçlar azalan hacmi skipped kaydı olarak gösterir
func (h *InvestmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Yetkilendirme hatası. Lütfen tekrar giriş yapın.", http.StatusUnauthorized)
		return
	}

	investment, err := h.investmentService.Cancel(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	payout := <-h.payoutQueue.AddJob(claims.UserID)
	if payout.Error != nil {
		log.Error().Err(payout.Error).Int("user_id", claims.UserID).Msg("Payout yürüyüşü başarısız")
	}

	data := map[string]interface{}{
		"investment": investment,
	}
	if payout.Result != nil {
		data["payout"] = payout.Result
	}

	writeSuccess(w, http.StatusOK, data, "Yatırım iptal edildi, anapara iade edildi")
}

// Compound compound işini elle tetikler (ops endpoint'i)
// Scheduler çalışmadığında veya geriye dönük düzeltmede kullanılır
func (h *InvestmentHandler) Compound(w http.ResponseWriter, r *http.Request) {
	processed, total, err := h.investmentService.CompoundAllIfBusinessDay(time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"processed":    processed,
		"total_profit": total,
	}, "Compound işlemi tamamlandı")
}
