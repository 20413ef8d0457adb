package services

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/config"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/repository"
)

// BonusService ilk yatırım lider bonusu
// Alt üye eşiğin üstünde ilk yatırımını yaptığında sponsoru sabit bonus alır;
// aynı alt üye için ikinci kez bonus ödenmez
type BonusService struct {
	txRunner   db.TxRunner
	userRepo   *repository.UserRepository
	bonusRepo  *repository.BonusRepository
	ledgerRepo *repository.LedgerRepository
	cfg        *config.Config
}

// NewBonusService yeni service oluşturur
func NewBonusService(
	txRunner db.TxRunner,
	userRepo *repository.UserRepository,
	bonusRepo *repository.BonusRepository,
	ledgerRepo *repository.LedgerRepository,
	cfg *config.Config,
) *BonusService {
	return &BonusService{
		txRunner:   txRunner,
		userRepo:   userRepo,
		bonusRepo:  bonusRepo,
		ledgerRepo: ledgerRepo,
		cfg:        cfg,
	}
}

// GrantFirstDepositBonus alt üyenin ilk yatırımı için sponsora bonus işler
// Eşik altı tutarlar ve sponsorsuz kullanıcılar sessizce atlanır
func (s *BonusService) GrantFirstDepositBonus(downline *models.User, depositAmount float64) error {
	if depositAmount < s.cfg.BonusMinDeposit {
		return nil
	}
	if downline.ReferredBy == nil || *downline.ReferredBy == "" {
		return nil
	}

	sponsor, err := s.userRepo.GetByReferralCode(*downline.ReferredBy)
	if err != nil {
		return fmt.Errorf("sponsor bulunamadı: %w", err)
	}

	exists, err := s.bonusRepo.Exists(sponsor.ID, downline.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	txErr := s.txRunner.RunInTx(func(tx *sql.Tx) error {
		userRepo := s.userRepo.WithTx(tx)
		bonusRepo := s.bonusRepo.WithTx(tx)
		ledger := s.ledgerRepo.WithTx(tx)

		if err := bonusRepo.Create(&models.Bonus{
			UserID:         sponsor.ID,
			ReferredUserID: downline.ID,
			Amount:         s.cfg.BonusAmount,
			Type:           models.TxBonus,
		}); err != nil {
			return err
		}

		if err := userRepo.AddToBalance(sponsor.ID, models.FieldBonusBalance, s.cfg.BonusAmount); err != nil {
			return err
		}

		_, err := ledger.Append(&models.LedgerEntry{
			UserID: sponsor.ID,
			Type:   models.TxBonus,
			Amount: s.cfg.BonusAmount,
			Status: models.StatusCompleted,
			Note:   fmt.Sprintf("%s ilk yatırımını yaptı", downline.FullName()),
		})
		return err
	})

	if txErr != nil {
		return txErr
	}

	log.Info().
		Int("sponsor_id", sponsor.ID).
		Int("downline_id", downline.ID).
		Float64("amount", s.cfg.BonusAmount).
		Msg("🎁 Lider bonusu işlendi")

	return nil
}
