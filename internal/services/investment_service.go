package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/apperrors"
	"github.com/finalxcard/invest-api/internal/config"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/interfaces"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/repository"
)

// InvestmentService yatırım yaşam döngüsü: açma/yükseltme, compound, iptal
type InvestmentService struct {
	txRunner       db.TxRunner
	userRepo       *repository.UserRepository
	investmentRepo *repository.InvestmentRepository
	ledgerRepo     *repository.LedgerRepository
	catalog        *CatalogService
	bonusService   interfaces.BonusServiceInterface
	cfg            *config.Config
}

// NewInvestmentService yeni service oluşturur
func NewInvestmentService(
	txRunner db.TxRunner,
	userRepo *repository.UserRepository,
	investmentRepo *repository.InvestmentRepository,
	ledgerRepo *repository.LedgerRepository,
	catalog *CatalogService,
	bonusService interfaces.BonusServiceInterface,
	cfg *config.Config,
) *InvestmentService {
	return &InvestmentService{
		txRunner:       txRunner,
		userRepo:       userRepo,
		investmentRepo: investmentRepo,
		ledgerRepo:     ledgerRepo,
		catalog:        catalog,
		bonusService:   bonusService,
		cfg:            cfg,
	}
}

// resolveRate paketin oranını döner; kullanıcının direkt referans sayısı
// paket için tanımlı eşiğe ulaştıysa yükseltilmiş oran uygulanır
func (s *InvestmentService) resolveRate(user *models.User, pkg *models.Package) (float64, error) {
	rule, ok := s.cfg.RateBoosts[pkg.Name]
	if !ok {
		return pkg.Rate, nil
	}

	count, err := s.userRepo.CountDirectReferrals(user.ReferralCode)
	if err != nil {
		return 0, apperrors.Upstream("referans sayısı okunamadı", err)
	}

	if count >= rule.Threshold {
		log.Info().
			Int("user_id", user.ID).
			Str("package", pkg.Name).
			Int("referrals", count).
			Float64("boosted_rate", rule.BoostedRate).
			Msg("⚡ Oran yükseltmesi uygulandı")
		return rule.BoostedRate, nil
	}

	return pkg.Rate, nil
}

// OpenOrUpgrade yeni yatırım açar veya mevcut aktif yatırıma ekleme yapar
// Bakiye düşümü, yatırım kaydı ve ledger girişleri tek transaction'da yapılır;
// hata durumunda hepsi geri alınır ve transaction dışında failed kaydı düşülür
func (s *InvestmentService) OpenOrUpgrade(userID int, req *models.CreateInvestmentRequest) (*models.InvestmentResult, error) {
	if !validAmount(req.Amount) {
		return nil, apperrors.InvalidInput("yatırım tutarı sıfırdan büyük olmalı")
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperrors.NotFound("kullanıcı bulunamadı")
	}

	var result *models.InvestmentResult

	txErr := s.txRunner.RunInTx(func(tx *sql.Tx) error {
		userRepo := s.userRepo.WithTx(tx)
		invRepo := s.investmentRepo.WithTx(tx)
		ledger := s.ledgerRepo.WithTx(tx)

		// 1. Bakiyeyi düş (yetersizse hiçbir şey yazılmadan çıkılır)
		if err := userRepo.TryDebit(userID, models.FieldMainBalance, req.Amount); err != nil {
			if errors.Is(err, repository.ErrInsufficientBalance) {
				return apperrors.InsufficientFunds("ana bakiye yetersiz")
			}
			return err
		}

		// 2. Talep kaydı
		if _, err := ledger.Append(&models.LedgerEntry{
			UserID: userID,
			Type:   models.TxInvestmentInit,
			Amount: req.Amount,
			Status: models.StatusPending,
			Note:   "Yatırım talebi alındı",
		}); err != nil {
			return err
		}

		// 3. Mevcut aktif yatırımla birleşen toplam üzerinden tier seçilir
		existing, err := invRepo.GetActiveByUserID(userID)
		if err != nil {
			return err
		}

		total := req.Amount
		if existing != nil {
			total += existing.Amount
		}

		pkg, err := s.catalog.FindTierForAmount(total)
		if err != nil {
			return err
		}

		rate, err := s.resolveRate(user, pkg)
		if err != nil {
			return err
		}

		var investment *models.Investment
		var txType string
		if existing != nil {
			investment, err = invRepo.Upgrade(existing.ID, total, rate, pkg.ID)
			txType = models.TxInvestmentUpgrade
		} else {
			investment, err = invRepo.Create(userID, pkg.ID, total, rate)
			txType = models.TxInvestment
		}
		if err != nil {
			return err
		}

		// 4. Sonuç kaydı
		if _, err := ledger.Append(&models.LedgerEntry{
			UserID: userID,
			Type:   txType,
			Amount: req.Amount,
			Status: models.StatusCompleted,
			Note:   fmt.Sprintf("%s paketi, oran %%%.2f", pkg.Name, rate),
		}); err != nil {
			return err
		}

		result = &models.InvestmentResult{
			Investment: investment,
			TierName:   pkg.Name,
			Upgraded:   existing != nil,
		}

		return nil
	})

	if txErr != nil {
		// Rollback sonrası iz: başarısız denemeler de ledger'da görünür
		if _, lerr := s.ledgerRepo.Append(&models.LedgerEntry{
			UserID: userID,
			Type:   models.TxInvestmentError,
			Amount: req.Amount,
			Status: models.StatusFailed,
			Note:   txErr.Error(),
		}); lerr != nil {
			log.Error().Err(lerr).Int("user_id", userID).Msg("Başarısız yatırım kaydı yazılamadı")
		}
		return nil, txErr
	}

	log.Info().
		Int("user_id", userID).
		Int("investment_id", result.Investment.ID).
		Float64("amount", req.Amount).
		Bool("upgraded", result.Upgraded).
		Str("tier", result.TierName).
		Msg("💰 Yatırım işlendi")

	// İlk yatırım sponsora lider bonusu tetikleyebilir (best-effort)
	if !result.Upgraded {
		if err := s.bonusService.GrantFirstDepositBonus(user, req.Amount); err != nil {
			log.Error().Err(err).Int("user_id", userID).Msg("Lider bonusu işlenemedi")
		}
	}

	return result, nil
}

// Cancel kullanıcının aktif yatırımını iptal eder ve anaparayı iade eder
// Birikmiş kâr profit_balance'ta kalır, geri alınmaz
func (s *InvestmentService) Cancel(userID int) (*models.Investment, error) {
	investment, err := s.investmentRepo.GetActiveByUserID(userID)
	if err != nil {
		return nil, apperrors.Upstream("aktif yatırım sorgulanamadı", err)
	}
	if investment == nil {
		return nil, apperrors.StateConflict("iptal edilecek aktif yatırım yok")
	}

	txErr := s.txRunner.RunInTx(func(tx *sql.Tx) error {
		userRepo := s.userRepo.WithTx(tx)
		invRepo := s.investmentRepo.WithTx(tx)
		ledger := s.ledgerRepo.WithTx(tx)

		if err := invRepo.Close(investment.ID, models.InvestmentCanceled); err != nil {
			return apperrors.StateConflict("yatırım zaten kapatılmış")
		}

		if err := userRepo.AddToBalance(userID, models.FieldMainBalance, investment.Amount); err != nil {
			return err
		}

		_, err := ledger.Append(&models.LedgerEntry{
			UserID: userID,
			Type:   models.TxRefund,
			Amount: investment.Amount,
			Status: models.StatusCompleted,
			Note:   fmt.Sprintf("Yatırım #%d iptal iadesi", investment.ID),
		})
		return err
	})

	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("user_id", userID).
		Int("investment_id", investment.ID).
		Float64("refund", investment.Amount).
		Msg("↩️ Yatırım iptal edildi")

	investment.Status = models.InvestmentCanceled
	return investment, nil
}

// CompoundAll tüm aktif yatırımlara günlük kârı işler
// Her yatırım kendi transaction'ında işlenir; birinin hatası diğerlerini durdurmaz
func (s *InvestmentService) CompoundAll() (int, float64, error) {
	investments, err := s.investmentRepo.GetAllActive()
	if err != nil {
		return 0, 0, apperrors.Upstream("aktif yatırımlar yüklenemedi", err)
	}

	// Paket adları not alanı için bir kez yüklenir
	packageNames := make(map[int]string)
	if packages, err := s.catalog.GetAll(); err == nil {
		for _, p := range packages {
			packageNames[p.ID] = p.Name
		}
	}

	processed := 0
	totalProfit := 0.0

	for _, inv := range investments {
		profit := roundCents(inv.Amount * inv.Rate / 100)
		if profit <= 0 {
			continue
		}

		invID := inv.ID
		userID := inv.UserID

		txErr := s.txRunner.RunInTx(func(tx *sql.Tx) error {
			userRepo := s.userRepo.WithTx(tx)
			invRepo := s.investmentRepo.WithTx(tx)
			ledger := s.ledgerRepo.WithTx(tx)

			if err := invRepo.ApplyProfit(invID, profit); err != nil {
				return err
			}
			if err := userRepo.AddToBalance(userID, models.FieldProfitBalance, profit); err != nil {
				return err
			}

			_, err := ledger.Append(&models.LedgerEntry{
				UserID: userID,
				Type:   models.TxProfit,
				Amount: profit,
				Status: models.StatusCompleted,
				Note:   fmt.Sprintf("Günlük kâr (%s)", packageNames[inv.PackageID]),
			})
			return err
		})

		if txErr != nil {
			log.Error().Err(txErr).Int("investment_id", invID).Msg("❌ Compound işlenemedi, sonrakine geçiliyor")
			continue
		}

		processed++
		totalProfit += profit
	}

	log.Info().
		Int("processed", processed).
		Int("total_active", len(investments)).
		Float64("total_profit", totalProfit).
		Msg("📈 Günlük compound tamamlandı")

	return processed, totalProfit, nil
}

// CompoundAllIfBusinessDay yapılandırılmış tatil günlerinde compound'u atlar
func (s *InvestmentService) CompoundAllIfBusinessDay(now time.Time) (int, float64, error) {
	if s.cfg.IsProfitSkipDay(now.Weekday()) {
		log.Info().Str("weekday", now.Weekday().String()).Msg("Compound günü değil, atlandı")
		return 0, 0, nil
	}
	return s.CompoundAll()
}

// GetActive kullanıcının aktif yatırımını döner
func (s *InvestmentService) GetActive(userID int) (*models.Investment, error) {
	investment, err := s.investmentRepo.GetActiveByUserID(userID)
	if err != nil {
		return nil, apperrors.Upstream("aktif yatırım sorgulanamadı", err)
	}
	if investment == nil {
		return nil, apperrors.NotFound("aktif yatırım yok")
	}
	return investment, nil
}

// GetUserInvestments kullanıcının yatırım geçmişini döner
func (s *InvestmentService) GetUserInvestments(userID int) ([]*models.Investment, error) {
	investments, err := s.investmentRepo.GetByUserID(userID)
	if err != nil {
		return nil, apperrors.Upstream("yatırım geçmişi alınamadı", err)
	}
	return investments, nil
}

// roundCents kuruş hassasiyetine yuvarlar
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// validAmount tutarın pozitif ve sonlu bir sayı olmasını şart koşar
// NaN ve ±Inf karşılaştırmalardan sızıp veritabanına ulaşabilir;
// tüm para giriş noktaları bu kontrolden geçer
func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
