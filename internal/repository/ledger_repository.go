package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
)

// LedgerRepository append-only transaction log işlemleri
// Kayıtlar hiçbir zaman güncellenmez veya silinmez
type LedgerRepository struct {
	q db.Querier
}

// NewLedgerRepository yeni repository oluşturur
func NewLedgerRepository(database *sql.DB) *LedgerRepository {
	return &LedgerRepository{q: database}
}

// WithTx transaction'a bağlı repository kopyası döner
func (r *LedgerRepository) WithTx(tx *sql.Tx) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// transactionColumns transactions tablosundan okunan kolonlar
const transactionColumns = `id, user_id, type, amount, currency, status, reference, note, created_at`

// Append yeni ledger kaydı ekler
func (r *LedgerRepository) Append(entry *models.LedgerEntry) (*models.Transaction, error) {
	currency := entry.Currency
	if currency == "" {
		currency = "USD"
	}
	status := entry.Status
	if status == "" {
		status = models.StatusPending
	}

	query := `
		INSERT INTO transactions (user_id, type, amount, currency, status, reference, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + transactionColumns

	var tx models.Transaction
	err := r.q.QueryRow(query, entry.UserID, entry.Type, entry.Amount, currency, status, uuid.NewString(), entry.Note).Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Type,
		&tx.Amount,
		&tx.Currency,
		&tx.Status,
		&tx.Reference,
		&tx.Note,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger kaydı eklenemedi: %w", err)
	}

	return &tx, nil
}

// GetByUserID kullanıcının ledger kayıtlarını getirir (en yeni önce)
func (r *LedgerRepository) GetByUserID(userID int, limit, offset int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ledger sorgusu hatası: %w", err)
	}

	return scanTransactions(rows)
}

// scanTransactions sorgu sonucunu Transaction listesine okur
func scanTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Type,
			&tx.Amount,
			&tx.Currency,
			&tx.Status,
			&tx.Reference,
			&tx.Note,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ledger scan hatası: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}
