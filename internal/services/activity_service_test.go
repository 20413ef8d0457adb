package services

import (
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalxcard/invest-api/internal/apperrors"
	"github.com/finalxcard/invest-api/internal/config"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/repository"
)

func newTestActivityService(t *testing.T) (*ActivityService, sqlmock.Sqlmock) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := &config.Config{WithdrawalFeePercent: 10}

	return NewActivityService(
		db.NewRunner(database),
		repository.NewUserRepository(database),
		repository.NewLedgerRepository(database),
		cfg,
	), mock
}

// TestActivityService_TransferToMain_InvalidSource, bilinmeyen kaynağın
// veritabanına gitmeden reddedilmesini test eder.
func TestActivityService_TransferToMain_InvalidSource(t *testing.T) {
	service, mock := newTestActivityService(t)

	for _, from := range []string{"main", "withdrawal", ""} {
		result, err := service.TransferToMain(1, &models.TransferRequest{From: from, Amount: 50})

		assert.Nil(t, result)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput), "from: %q", from)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestActivityService_TransferToMain_MovesBalance, kazanç bakiyesinden ana
// bakiyeye aktarımın tek transaction'da yapılmasını test eder.
func TestActivityService_TransferToMain_MovesBalance(t *testing.T) {
	// Arrange
	service, mock := newTestActivityService(t)

	mock.ExpectBegin()
	mock.ExpectExec("SET profit_balance = profit_balance").
		WithArgs(75.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET main_balance = main_balance").
		WithArgs(75.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnRows(ledgerRow(1, models.TxTransfer, 75, models.StatusCompleted))
	mock.ExpectCommit()

	// Act
	result, err := service.TransferToMain(1, &models.TransferRequest{From: "profit", Amount: 75})

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, models.TxTransfer, result.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestActivityService_TransferToMain_InsufficientSource, kaynak bakiye
// yetmediğinde transferin geri alınmasını test eder.
func TestActivityService_TransferToMain_InsufficientSource(t *testing.T) {
	// Arrange
	service, mock := newTestActivityService(t)

	mock.ExpectBegin()
	mock.ExpectExec("SET referral_balance = referral_balance").
		WithArgs(500.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// Act
	result, err := service.TransferToMain(1, &models.TransferRequest{From: "referral", Amount: 500})

	// Assert
	assert.Nil(t, result)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInsufficientFunds))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestActivityService_RequestWithdrawal_AppliesFee, %10 kesinti sonrası net
// tutarın çekim havuzuna aktarılmasını test eder: 100 brüt -> 90 net.
func TestActivityService_RequestWithdrawal_AppliesFee(t *testing.T) {
	// Arrange
	service, mock := newTestActivityService(t)

	mock.ExpectBegin()
	// Brüt tutar ana bakiyeden düşülür
	mock.ExpectExec("SET main_balance = main_balance").
		WithArgs(100.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Net tutar çekim havuzuna eklenir
	mock.ExpectExec("SET withdrawal_total_balance = withdrawal_total_balance").
		WithArgs(90.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WillReturnRows(ledgerRow(1, models.TxWithdraw, 90, models.StatusPending))
	mock.ExpectCommit()

	// Act
	result, err := service.RequestWithdrawal(1, &models.WithdrawRequest{Amount: 100})

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 90.0, result.Amount)
	assert.Equal(t, models.StatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestActivityService_RequestWithdrawal_InvalidAmount, sıfır, negatif ve
// sonlu olmayan tutarların reddedilmesini test eder.
func TestActivityService_RequestWithdrawal_InvalidAmount(t *testing.T) {
	service, mock := newTestActivityService(t)

	for _, amount := range []float64{0, -10, math.Inf(1), math.NaN()} {
		result, err := service.RequestWithdrawal(1, &models.WithdrawRequest{Amount: amount})

		assert.Nil(t, result)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput), "amount: %v", amount)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestActivityService_TransferToMain_InvalidAmount, sıfır, negatif ve
// sonlu olmayan transfer tutarlarının reddedilmesini test eder.
func TestActivityService_TransferToMain_InvalidAmount(t *testing.T) {
	service, mock := newTestActivityService(t)

	for _, amount := range []float64{0, -25, math.Inf(1), math.NaN()} {
		result, err := service.TransferToMain(1, &models.TransferRequest{From: "profit", Amount: amount})

		assert.Nil(t, result)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput), "amount: %v", amount)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestActivityService_GetHistory_ClampsLimit, limit sınırlarının
// düzeltilmesini test eder.
func TestActivityService_GetHistory_ClampsLimit(t *testing.T) {
	// Arrange: limit 0 -> 20, offset -5 -> 0 olarak sorguya gitmeli
	service, mock := newTestActivityService(t)

	mock.ExpectQuery("FROM transactions WHERE user_id").
		WithArgs(1, 20, 0).
		WillReturnRows(ledgerRow(1, models.TxProfit, 5, models.StatusCompleted))

	// Act
	history, err := service.GetHistory(1, 0, -5)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
