package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalxcard/invest-api/internal/models"
)

func newReferralRepo(t *testing.T) (*ReferralRepository, sqlmock.Sqlmock) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewReferralRepository(database), mock
}

// TestReferralRepository_Create, kenarın eklenip geri okunmasını test eder.
func TestReferralRepository_Create(t *testing.T) {
	// Arrange
	repo, mock := newReferralRepo(t)

	rows := sqlmock.NewRows([]string{"id", "parent_id", "child_id", "position", "created_at"}).
		AddRow(1, 1, 2, models.PositionLeft, time.Now())
	mock.ExpectQuery("INSERT INTO referrals").
		WithArgs(1, 2, models.PositionLeft).
		WillReturnRows(rows)

	// Act
	edge, err := repo.Create(1, 2, models.PositionLeft)

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, 1, edge.ParentID)
	assert.Equal(t, 2, edge.ChildID)
	assert.Equal(t, models.PositionLeft, edge.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestReferralRepository_Create_ChildAlreadyPlaced, child unique constraint
// ihlalinin sentinel hataya çevrilmesini test eder.
func TestReferralRepository_Create_ChildAlreadyPlaced(t *testing.T) {
	repo, mock := newReferralRepo(t)

	pqErr := &pq.Error{Code: "23505", Constraint: "referrals_child_id_key"}
	mock.ExpectQuery("INSERT INTO referrals").
		WithArgs(1, 2, models.PositionLeft).
		WillReturnError(pqErr)

	edge, err := repo.Create(1, 2, models.PositionLeft)

	assert.Nil(t, edge)
	assert.ErrorIs(t, err, ErrChildAlreadyPlaced)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestReferralRepository_Create_PositionTaken, pozisyon unique constraint
// ihlalinin sentinel hataya çevrilmesini test eder.
func TestReferralRepository_Create_PositionTaken(t *testing.T) {
	repo, mock := newReferralRepo(t)

	pqErr := &pq.Error{Code: "23505", Constraint: "referrals_parent_position_key"}
	mock.ExpectQuery("INSERT INTO referrals").
		WithArgs(1, 3, models.PositionLeft).
		WillReturnError(pqErr)

	edge, err := repo.Create(1, 3, models.PositionLeft)

	assert.Nil(t, edge)
	assert.ErrorIs(t, err, ErrPositionTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestReferralRepository_GetByChildID_NotFound, uplink'i olmayan kullanıcı
// için nil dönmesini test eder (kök kullanıcı durumu).
func TestReferralRepository_GetByChildID_NotFound(t *testing.T) {
	repo, mock := newReferralRepo(t)

	mock.ExpectQuery("FROM referrals WHERE child_id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id", "child_id", "position", "created_at"}))

	edge, err := repo.GetByChildID(1)

	assert.NoError(t, err)
	assert.Nil(t, edge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestReferralRepository_GetAllEdges, kenar kümesinin tek sorguda okunmasını test eder.
func TestReferralRepository_GetAllEdges(t *testing.T) {
	repo, mock := newReferralRepo(t)

	rows := sqlmock.NewRows([]string{"id", "parent_id", "child_id", "position", "created_at"}).
		AddRow(1, 1, 2, models.PositionLeft, time.Now()).
		AddRow(2, 1, 3, models.PositionRight, time.Now())
	mock.ExpectQuery("FROM referrals").WillReturnRows(rows)

	edges, err := repo.GetAllEdges()

	assert.NoError(t, err)
	assert.Len(t, edges, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
