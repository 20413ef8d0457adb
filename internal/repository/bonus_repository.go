package repository

import (
	"database/sql"
	"fmt"

	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
)

// BonusRepository lider bonusu kayıtları
// (sponsor, alt üye) çifti başına tek kayıt tutulur, mükerrer bonus engellenir
type BonusRepository struct {
	q db.Querier
}

// NewBonusRepository yeni repository oluşturur
func NewBonusRepository(database *sql.DB) *BonusRepository {
	return &BonusRepository{q: database}
}

// WithTx transaction'a bağlı repository kopyası döner
func (r *BonusRepository) WithTx(tx *sql.Tx) *BonusRepository {
	return &BonusRepository{q: tx}
}

// Exists sponsor bu alt üye için daha önce bonus almış mı
func (r *BonusRepository) Exists(userID, referredUserID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bonuses WHERE user_id = $1 AND referred_user_id = $2)`

	var exists bool
	if err := r.q.QueryRow(query, userID, referredUserID).Scan(&exists); err != nil {
		return false, fmt.Errorf("bonus kaydı sorgulanamadı: %w", err)
	}

	return exists, nil
}

// Create yeni bonus kaydı oluşturur
func (r *BonusRepository) Create(bonus *models.Bonus) error {
	query := `
		INSERT INTO bonuses (user_id, referred_user_id, amount, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(query, bonus.UserID, bonus.ReferredUserID, bonus.Amount, bonus.Type).
		Scan(&bonus.ID, &bonus.CreatedAt)
	if err != nil {
		return fmt.Errorf("bonus kaydı oluşturulamadı: %w", err)
	}

	return nil
}
