package services

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/config"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/repository"
)

// PayoutService binary eşleşme ödemesi
// Yeni hacim girişinden sonra ata zinciri yukarı yürünür; her atada iki
// bacağın henüz eşleşmemiş hacmi karşılaştırılır ve tam birimler ödenir.
// Ödenen hacim binary_matched sayaçlarına yazıldığı için aynı hacim iki
// kez ödenmez (carry-forward)
type PayoutService struct {
	txRunner     db.TxRunner
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
	ledgerRepo   *repository.LedgerRepository
	treeService  *TreeService
	cfg          *config.Config
}

// NewPayoutService yeni service oluşturur
func NewPayoutService(
	txRunner db.TxRunner,
	userRepo *repository.UserRepository,
	referralRepo *repository.ReferralRepository,
	ledgerRepo *repository.LedgerRepository,
	treeService *TreeService,
	cfg *config.Config,
) *PayoutService {
	return &PayoutService{
		txRunner:     txRunner,
		userRepo:     userRepo,
		referralRepo: referralRepo,
		ledgerRepo:   ledgerRepo,
		treeService:  treeService,
		cfg:          cfg,
	}
}

// RunBinaryPayout startUserID'den köke kadar tüm ataların ödemesini işler
// Her ata kendi transaction'ında işlenir; bir atanın hatası yürüyüşü durdurur
func (s *PayoutService) RunBinaryPayout(startUserID int) (*models.PayoutResult, error) {
	idx, err := s.treeService.BuildIndex()
	if err != nil {
		return nil, err
	}

	result := &models.PayoutResult{}

	cursor := startUserID
	for {
		edge, err := s.referralRepo.GetByChildID(cursor)
		if err != nil {
			return result, fmt.Errorf("ata zinciri okunamadı: %w", err)
		}
		if edge == nil {
			break
		}

		paid, err := s.settleAncestor(edge.ParentID, result.LevelsProcessed+1, idx)
		if err != nil {
			return result, err
		}

		result.LevelsProcessed++
		result.TotalPaid += paid
		cursor = edge.ParentID
	}

	log.Info().
		Int("start_user", startUserID).
		Int("levels", result.LevelsProcessed).
		Float64("total_paid", result.TotalPaid).
		Msg("💸 Binary payout yürüyüşü tamamlandı")

	return result, nil
}

// settleAncestor tek bir atanın eşleşme ödemesini hesaplar ve işler
// level, yürüyüşün tetikleyen kullanıcıdan itibaren kaçıncı atada olduğudur;
// her iki ledger notu seviye, eşleşme ve bacak hacimlerini taşır
func (s *PayoutService) settleAncestor(ancestorID, level int, idx *TreeIndex) (float64, error) {
	leftVol, _ := idx.legStats(ancestorID, models.PositionLeft)
	rightVol, _ := idx.legStats(ancestorID, models.PositionRight)

	var paid float64

	txErr := s.txRunner.RunInTx(func(tx *sql.Tx) error {
		userRepo := s.userRepo.WithTx(tx)
		ledger := s.ledgerRepo.WithTx(tx)

		// Sayaçlar transaction içinde taze okunur; eşzamanlı iki yürüyüş
		// aynı hacmi iki kez ödeyemez
		ancestor, err := userRepo.GetByID(ancestorID)
		if err != nil {
			return err
		}

		availableLeft := math.Max(0, leftVol-ancestor.BinaryMatchedLeft)
		availableRight := math.Max(0, rightVol-ancestor.BinaryMatchedRight)

		pairs := math.Floor(math.Min(availableLeft, availableRight) / s.cfg.PayoutUnitVolume)
		if pairs <= 0 {
			// Eşleşme yok: izlenebilirlik için skipped kaydı düşülür
			_, err := ledger.Append(&models.LedgerEntry{
				UserID: ancestorID,
				Type:   models.TxBinaryProfitSkip,
				Amount: 0,
				Status: models.StatusSkipped,
				Note: fmt.Sprintf("Eşleşme yok | Seviye %d | Eşleşme 0 | Sol %.2f | Sağ %.2f",
					level, availableLeft, availableRight),
			})
			return err
		}

		matchedVolume := pairs * s.cfg.PayoutUnitVolume
		reward := pairs * s.cfg.PayoutUnitReward

		if err := userRepo.IncrementBinaryMatched(ancestorID, matchedVolume, matchedVolume); err != nil {
			return err
		}
		if err := userRepo.AddToBalance(ancestorID, models.FieldReferralBalance, reward); err != nil {
			return err
		}
		if err := userRepo.AddToBalance(ancestorID, models.FieldMaxCapBalance, reward); err != nil {
			return err
		}

		if _, err := ledger.Append(&models.LedgerEntry{
			UserID: ancestorID,
			Type:   models.TxBinaryProfit,
			Amount: reward,
			Status: models.StatusCompleted,
			Note: fmt.Sprintf("Binary kazanç | Seviye %d | Eşleşme %.0f | Sol %.2f | Sağ %.2f",
				level, pairs, availableLeft, availableRight),
		}); err != nil {
			return err
		}

		paid = reward
		return nil
	})

	if txErr != nil {
		return 0, fmt.Errorf("ata %d ödemesi işlenemedi: %w", ancestorID, txErr)
	}

	if paid > 0 {
		log.Info().
			Int("ancestor_id", ancestorID).
			Float64("reward", paid).
			Msg("✅ Binary ödeme yapıldı")
	}

	return paid, nil
}
