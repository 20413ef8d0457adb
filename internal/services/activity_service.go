package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/apperrors"
	"github.com/finalxcard/invest-api/internal/config"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/repository"
)

// transferSources kullanıcıdan gelen kaynak adı → bakiye kolonu eşlemesi
// main_balance kaynak olamaz; sadece kazanç bakiyeleri ana bakiyeye taşınır
var transferSources = map[string]string{
	"profit":   models.FieldProfitBalance,
	"referral": models.FieldReferralBalance,
	"bonus":    models.FieldBonusBalance,
}

// ActivityService bakiye hareketleri: transfer, para çekme, geçmiş
type ActivityService struct {
	txRunner   db.TxRunner
	userRepo   *repository.UserRepository
	ledgerRepo *repository.LedgerRepository
	cfg        *config.Config
}

// NewActivityService yeni service oluşturur
func NewActivityService(
	txRunner db.TxRunner,
	userRepo *repository.UserRepository,
	ledgerRepo *repository.LedgerRepository,
	cfg *config.Config,
) *ActivityService {
	return &ActivityService{
		txRunner:   txRunner,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		cfg:        cfg,
	}
}

// TransferToMain kazanç bakiyesinden ana bakiyeye aktarım yapar
func (s *ActivityService) TransferToMain(userID int, req *models.TransferRequest) (*models.Transaction, error) {
	if !validAmount(req.Amount) {
		return nil, apperrors.InvalidInput("transfer tutarı pozitif bir sayı olmalı")
	}

	sourceField, ok := transferSources[req.From]
	if !ok {
		return nil, apperrors.InvalidInput("geçersiz kaynak. Geçerli kaynaklar: profit, referral, bonus")
	}

	var result *models.Transaction

	txErr := s.txRunner.RunInTx(func(tx *sql.Tx) error {
		userRepo := s.userRepo.WithTx(tx)
		ledger := s.ledgerRepo.WithTx(tx)

		if err := userRepo.TryDebit(userID, sourceField, req.Amount); err != nil {
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return apperrors.InsufficientFunds(fmt.Sprintf("%s bakiyesi yetersiz", req.From))
			}
			return err
		}

		if err := userRepo.AddToBalance(userID, models.FieldMainBalance, req.Amount); err != nil {
			return err
		}

		entry, err := ledger.Append(&models.LedgerEntry{
			UserID: userID,
			Type:   models.TxTransfer,
			Amount: req.Amount,
			Status: models.StatusCompleted,
			Note:   fmt.Sprintf("%s bakiyesinden ana bakiyeye", req.From),
		})
		if err != nil {
			return err
		}

		result = entry
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("user_id", userID).
		Str("from", req.From).
		Float64("amount", req.Amount).
		Msg("🔁 Bakiye transferi yapıldı")

	return result, nil
}

// RequestWithdrawal ana bakiyeden para çekme talebi oluşturur
// Kesinti düşüldükten sonra kalan tutar çekim havuzuna aktarılır;
// kayıt dış transfer tamamlanana kadar pending kalır
func (s *ActivityService) RequestWithdrawal(userID int, req *models.WithdrawRequest) (*models.Transaction, error) {
	if !validAmount(req.Amount) {
		return nil, apperrors.InvalidInput("çekim tutarı pozitif bir sayı olmalı")
	}

	fee := roundCents(req.Amount * s.cfg.WithdrawalFeePercent / 100)
	net := req.Amount - fee

	var result *models.Transaction

	txErr := s.txRunner.RunInTx(func(tx *sql.Tx) error {
		userRepo := s.userRepo.WithTx(tx)
		ledger := s.ledgerRepo.WithTx(tx)

		if err := userRepo.TryDebit(userID, models.FieldMainBalance, req.Amount); err != nil {
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return apperrors.InsufficientFunds("ana bakiye yetersiz")
			}
			return err
		}

		if err := userRepo.AddToBalance(userID, models.FieldWithdrawalTotalBalance, net); err != nil {
			return err
		}

		entry, err := ledger.Append(&models.LedgerEntry{
			UserID: userID,
			Type:   models.TxWithdraw,
			Amount: net,
			Status: models.StatusPending,
			Note:   fmt.Sprintf("Çekim talebi (brüt %.2f, kesinti %.2f)", req.Amount, fee),
		})
		if err != nil {
			return err
		}

		result = entry
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("user_id", userID).
		Float64("gross", req.Amount).
		Float64("fee", fee).
		Float64("net", net).
		Msg("🏧 Çekim talebi alındı")

	return result, nil
}

// GetHistory kullanıcının ledger geçmişini döner
func (s *ActivityService) GetHistory(userID int, limit, offset int) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	history, err := s.ledgerRepo.GetByUserID(userID, limit, offset)
	if err != nil {
		return nil, apperrors.Upstream("işlem geçmişi alınamadı", err)
	}

	return history, nil
}

// GetBalances kullanıcının güncel bakiye özetini döner
func (s *ActivityService) GetBalances(userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperrors.NotFound("kullanıcı bulunamadı")
	}
	return user, nil
}
