package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalxcard/invest-api/internal/auth"
	"github.com/finalxcard/invest-api/internal/config"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/middleware"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/repository"
	"github.com/finalxcard/invest-api/internal/services"
)

// newTestInvestmentHandler gerçek service katmanını sqlmock üzerine kurar
// Queue tek worker ile çalışır, test sonunda durdurulur
func newTestInvestmentHandler(t *testing.T) (*InvestmentHandler, sqlmock.Sqlmock) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := &config.Config{
		PayoutUnitVolume: 200,
		PayoutUnitReward: 35,
		RateBoosts:       map[string]config.BoostRule{},
	}

	userRepo := repository.NewUserRepository(database)
	referralRepo := repository.NewReferralRepository(database)
	investmentRepo := repository.NewInvestmentRepository(database)
	ledgerRepo := repository.NewLedgerRepository(database)
	bonusRepo := repository.NewBonusRepository(database)
	runner := db.NewRunner(database)

	catalog := services.NewCatalogService(repository.NewPackageRepository(database))
	bonusService := services.NewBonusService(runner, userRepo, bonusRepo, ledgerRepo, cfg)
	investmentService := services.NewInvestmentService(runner, userRepo, investmentRepo, ledgerRepo, catalog, bonusService, cfg)
	treeService := services.NewTreeService(runner, userRepo, referralRepo, investmentRepo)
	payoutService := services.NewPayoutService(runner, userRepo, referralRepo, ledgerRepo, treeService, cfg)

	payoutQueue := services.NewPayoutQueue(1, payoutService, 4)
	payoutQueue.Start()
	t.Cleanup(payoutQueue.Stop)

	return NewInvestmentHandler(investmentService, payoutQueue), mock
}

// authedRequest doğrulanmış kullanıcı claims'i taşıyan request üretir
func authedRequest(method, target string, userID int) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, &auth.Claims{UserID: userID})
	return req.WithContext(ctx)
}

// TestInvestmentHandler_Cancel_TriggersPayoutWalk, iptal sonrası ata zinciri
// için payout yürüyüşünün queue üzerinden işlenmesini ve sonucun yanıta
// eklenmesini test eder.
func TestInvestmentHandler_Cancel_TriggersPayoutWalk(t *testing.T) {
	// Arrange
	handler, mock := newTestInvestmentHandler(t)

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
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "amount", "currency", "status", "reference", "note", "created_at"}).
			AddRow(1, 1, models.TxRefund, 1500.0, "USD", models.StatusCompleted, "ref-1", "", time.Now()))
	mock.ExpectCommit()

	// İptal commit edildikten sonra yürüyüş başlar: kenar kümesi ve hacimler
	// yüklenir, kullanıcının uplink'i olmadığı için yürüyüş hemen biter
	mock.ExpectQuery("FROM referrals").WillReturnRows(
		sqlmock.NewRows([]string{"id", "parent_id", "child_id", "position", "created_at"}))
	mock.ExpectQuery("SELECT user_id, COALESCE").WillReturnRows(
		sqlmock.NewRows([]string{"user_id", "coalesce"}))
	mock.ExpectQuery("FROM referrals WHERE child_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "parent_id", "child_id", "position", "created_at"}))

	rr := httptest.NewRecorder()

	// Act
	handler.Cancel(rr, authedRequest(http.MethodPost, "/api/v1/investments/cancel", 1))

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "investment")
	assert.Contains(t, data, "payout")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestInvestmentHandler_Cancel_NoActiveInvestment, aktif yatırım yokken
// iptal isteğinin 409 dönmesini ve yürüyüş tetiklenmemesini test eder.
func TestInvestmentHandler_Cancel_NoActiveInvestment(t *testing.T) {
	handler, mock := newTestInvestmentHandler(t)

	mock.ExpectQuery("FROM investments WHERE user_id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "package_id", "amount", "rate", "total_profit", "status", "start_date", "end_date"}))

	rr := httptest.NewRecorder()
	handler.Cancel(rr, authedRequest(http.MethodPost, "/api/v1/investments/cancel", 1))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
