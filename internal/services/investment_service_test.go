package services

import (
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalxcard/invest-api/internal/apperrors"
	"github.com/finalxcard/invest-api/internal/config"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/repository"
)

func newTestInvestmentService(t *testing.T, cfg *config.Config) (*InvestmentService, sqlmock.Sqlmock) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	userRepo := repository.NewUserRepository(database)
	investmentRepo := repository.NewInvestmentRepository(database)
	ledgerRepo := repository.NewLedgerRepository(database)
	bonusRepo := repository.NewBonusRepository(database)
	runner := db.NewRunner(database)

	catalog := NewCatalogService(repository.NewPackageRepository(database))
	bonusService := NewBonusService(runner, userRepo, bonusRepo, ledgerRepo, cfg)

	return NewInvestmentService(runner, userRepo, investmentRepo, ledgerRepo, catalog, bonusService, cfg), mock
}

func testConfig() *config.Config {
	return &config.Config{
		PayoutUnitVolume: 200,
		PayoutUnitReward: 35,
		ProfitSkipDays:   []time.Weekday{time.Sunday, time.Saturday},
		RateBoosts:       map[string]config.BoostRule{},
		BonusMinDeposit:  100,
		BonusAmount:      8,
	}
}

// TestInvestmentService_OpenOrUpgrade_InvalidAmount, sıfır, negatif ve
// sonlu olmayan tutarların veritabanına gitmeden reddedilmesini test eder.
func TestInvestmentService_OpenOrUpgrade_InvalidAmount(t *testing.T) {
	service, mock := newTestInvestmentService(t, testConfig())

	for _, amount := range []float64{0, -50, math.Inf(1), math.Inf(-1), math.NaN()} {
		result, err := service.OpenOrUpgrade(1, &models.CreateInvestmentRequest{Amount: amount})

		assert.Nil(t, result)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput), "amount: %v", amount)
	}

	// Hiçbir tutar transaction açmamalı veya ledger'a ulaşmamalı
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestInvestmentService_OpenOrUpgrade_InsufficientBalance, bakiye yetersizse
// transaction'ın geri alınıp failed ledger kaydı düşülmesini test eder.
func TestInvestmentService_OpenOrUpgrade_InsufficientBalance(t *testing.T) {
	// Arrange
	service, mock := newTestInvestmentService(t, testConfig())

	mock.ExpectQuery("FROM users WHERE id").WillReturnRows(userRow(1, "VX-AAAA1111", nil))

	mock.ExpectBegin()
	// Guarded debit: bakiye yetmediği için hiçbir satır güncellenmez
	mock.ExpectExec("SET main_balance = main_balance").
		WithArgs(500.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// Rollback sonrası failed kaydı transaction dışında yazılır
	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnRows(ledgerRow(1, models.TxInvestmentError, 500, models.StatusFailed))

	// Act
	result, err := service.OpenOrUpgrade(1, &models.CreateInvestmentRequest{Amount: 500})

	// Assert
	assert.Nil(t, result)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientFunds))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestInvestmentService_Cancel_NoActiveInvestment, aktif yatırımı olmayan
// kullanıcının iptal isteğinin reddedilmesini test eder.
func TestInvestmentService_Cancel_NoActiveInvestment(t *testing.T) {
	service, mock := newTestInvestmentService(t, testConfig())

	mock.ExpectQuery("FROM investments WHERE user_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "package_id", "amount", "rate", "total_profit", "status", "start_date", "end_date"}))

	investment, err := service.Cancel(1)

	assert.Nil(t, investment)
	assert.True(t, apperrors.IsKind(err, apperrors.KindStateConflict))
}

// TestInvestmentService_Cancel_RefundsPrincipal, iptalde anaparanın ana
// bakiyeye iade edilmesini test eder.
func TestInvestmentService_Cancel_RefundsPrincipal(t *testing.T) {
	// Arrange
	service, mock := newTestInvestmentService(t, testConfig())

	invRows := sqlmock.NewRows([]string{"id", "user_id", "package_id", "amount", "rate", "total_profit", "status", "start_date", "end_date"}).
		AddRow(7, 1, 2, 1500.0, 0.75, 120.0, models.InvestmentActive, time.Now(), nil)
	mock.ExpectQuery("FROM investments WHERE user_id").WillReturnRows(invRows)

	mock.ExpectBegin()
	mock.ExpectExec("SET status = ").
		WithArgs(models.InvestmentCanceled, 7, models.InvestmentActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET main_balance = main_balance").
		WithArgs(1500.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnRows(ledgerRow(1, models.TxRefund, 1500, models.StatusCompleted))
	mock.ExpectCommit()

	// Act
	investment, err := service.Cancel(1)

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, investment)
	assert.Equal(t, models.InvestmentCanceled, investment.Status)
	assert.Equal(t, 1500.0, investment.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestInvestmentService_CompoundAllIfBusinessDay_SkipDay, tatil günlerinde
// compound'un hiç çalışmamasını test eder.
func TestInvestmentService_CompoundAllIfBusinessDay_SkipDay(t *testing.T) {
	service, mock := newTestInvestmentService(t, testConfig())

	// 2026-08-30 Pazar
	sunday := time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC)

	processed, total, err := service.CompoundAllIfBusinessDay(sunday)

	assert.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 0.0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestInvestmentService_CompoundAll_AppliesDailyProfit, günlük kârın
// anaparaya ve profit bakiyesine işlenmesini test eder.
func TestInvestmentService_CompoundAll_AppliesDailyProfit(t *testing.T) {
	// Arrange: 1000 tutar, %0.5 oran -> 5.00 kâr
	service, mock := newTestInvestmentService(t, testConfig())

	invRows := sqlmock.NewRows([]string{"id", "user_id", "package_id", "amount", "rate", "total_profit", "status", "start_date", "end_date"}).
		AddRow(3, 1, 1, 1000.0, 0.5, 0.0, models.InvestmentActive, time.Now(), nil)
	mock.ExpectQuery("FROM investments WHERE status").WillReturnRows(invRows)

	// Paket adları not alanı için yüklenir
	mock.ExpectQuery("FROM packages ORDER BY id").WillReturnRows(packageRows())

	mock.ExpectBegin()
	mock.ExpectExec("SET amount = amount").
		WithArgs(5.0, 3, models.InvestmentActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET profit_balance = profit_balance").
		WithArgs(5.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnRows(ledgerRow(1, models.TxProfit, 5, models.StatusCompleted))
	mock.ExpectCommit()

	// Act
	processed, total, err := service.CompoundAll()

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 5.0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRoundCents, kuruş yuvarlama davranışını test eder.
func TestRoundCents(t *testing.T) {
	assert.Equal(t, 5.0, roundCents(5.0))
	assert.Equal(t, 5.56, roundCents(5.555))
	assert.Equal(t, 0.01, roundCents(0.005))
}
