package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalxcard/invest-api/internal/models"
)

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewUserRepository(database), mock
}

// TestUserRepository_GetByID, kullanıcı satırının modele doğru okunmasını test eder.
func TestUserRepository_GetByID(t *testing.T) {
	// Arrange
	repo, mock := newUserRepo(t)

	rows := sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "referral_code", "referred_by",
		"main_balance", "profit_balance", "referral_balance", "bonus_balance",
		"max_cap_balance", "withdrawal_total_balance",
		"binary_matched_left", "binary_matched_right",
		"is_active", "created_at",
	}).AddRow(1, "Ali", "Yılmaz", "ali@example.com", "VX-AAAA1111", nil,
		1000.0, 25.5, 70.0, 8.0, 70.0, 0.0, 200.0, 200.0, true, time.Now())
	mock.ExpectQuery("FROM users WHERE id").WithArgs(1).WillReturnRows(rows)

	// Act
	user, err := repo.GetByID(1)

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "VX-AAAA1111", user.ReferralCode)
	assert.Equal(t, 1000.0, user.MainBalance)
	assert.Equal(t, 200.0, user.BinaryMatchedLeft)
	assert.Nil(t, user.ReferredBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_AddToBalance_InvalidField, whitelist dışı alan adının
// sorguya gitmeden reddedilmesini test eder.
func TestUserRepository_AddToBalance_InvalidField(t *testing.T) {
	repo, mock := newUserRepo(t)

	err := repo.AddToBalance(1, "id", 100)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_AddToBalance, geçerli alan için increment sorgusunu test eder.
func TestUserRepository_AddToBalance(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("SET bonus_balance = bonus_balance").
		WithArgs(8.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AddToBalance(1, models.FieldBonusBalance, 8)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_AddToBalance_UserNotFound, satır güncellenmediğinde
// hata dönmesini test eder.
func TestUserRepository_AddToBalance_UserNotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("SET main_balance = main_balance").
		WithArgs(50.0, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AddToBalance(99, models.FieldMainBalance, 50)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_TryDebit_Insufficient, guarded debit'in bakiye yetersizken
// sentinel hata dönmesini test eder.
func TestUserRepository_TryDebit_Insufficient(t *testing.T) {
	// Arrange: WHERE koşulu sağlanmadığı için 0 satır güncellenir
	repo, mock := newUserRepo(t)

	mock.ExpectExec("SET main_balance = main_balance").
		WithArgs(500.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Act
	err := repo.TryDebit(1, models.FieldMainBalance, 500)

	// Assert
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_TryDebit_Success, bakiye yeterliyken düşümün yapılmasını test eder.
func TestUserRepository_TryDebit_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("SET profit_balance = profit_balance").
		WithArgs(25.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.TryDebit(1, models.FieldProfitBalance, 25)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_TryDebit_InvalidAmount, pozitif olmayan tutarın
// sorguya gitmeden reddedilmesini test eder.
func TestUserRepository_TryDebit_InvalidAmount(t *testing.T) {
	repo, mock := newUserRepo(t)

	assert.Error(t, repo.TryDebit(1, models.FieldMainBalance, 0))
	assert.Error(t, repo.TryDebit(1, models.FieldMainBalance, -10))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_SetReferredBy, referred_by'ın sadece boşken yazılmasını test eder.
func TestUserRepository_SetReferredBy(t *testing.T) {
	repo, mock := newUserRepo(t)

	// İlk yazım: alan boş, güncelleme yapılır
	mock.ExpectExec("SET referred_by").
		WithArgs("VX-AAAA1111", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.SetReferredBy(2, "VX-AAAA1111")
	assert.NoError(t, err)
	assert.True(t, updated)

	// İkinci yazım: alan zaten dolu, mevcut değer korunur
	mock.ExpectExec("SET referred_by").
		WithArgs("VX-BBBB2222", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err = repo.SetReferredBy(2, "VX-BBBB2222")
	assert.NoError(t, err)
	assert.False(t, updated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_IncrementBinaryMatched, her iki sayacın tek sorguda
// artırılmasını test eder.
func TestUserRepository_IncrementBinaryMatched(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("binary_matched_left").
		WithArgs(200.0, 200.0, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementBinaryMatched(1, 200, 200)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_GetByIDs_Empty, boş liste için sorgu atılmamasını test eder.
func TestUserRepository_GetByIDs_Empty(t *testing.T) {
	repo, mock := newUserRepo(t)

	users, err := repo.GetByIDs(nil)

	assert.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
