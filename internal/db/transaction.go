package db

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// TransactionFunc database transaction içinde çalışacak fonksiyon tipi
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction database transaction'ı yönetir
// Hata durumunda otomatik rollback, başarı durumunda commit yapar
func WithTransaction(db *sql.DB, fn TransactionFunc) error {
	// Transaction başlat
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("transaction başlatılamadı: %w", err)
	}

	// Defer ile transaction'ı yönet
	defer func() {
		if r := recover(); r != nil {
			// Panic durumunda rollback
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("Rollback hatası (panic)")
			}
			log.Error().Interface("panic", r).Msg("Transaction panic ile rollback yapıldı")
			panic(r) // Panic'i yeniden fırlat
		}
	}()

	// İş mantığını çalıştır
	if err := fn(tx); err != nil {
		// Hata durumunda rollback
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("Rollback hatası")
			return fmt.Errorf("transaction hatası ve rollback hatası: %w, rollback: %v", err, rollbackErr)
		}
		log.Warn().Err(err).Msg("Transaction rollback yapıldı")
		return err
	}

	// Başarı durumunda commit
	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("Commit hatası")
		return fmt.Errorf("transaction commit hatası: %w", err)
	}

	return nil
}

// TxRunner servis katmanının transaction çalıştırma arayüzü
// Testlerde sahte runner fn'i doğrudan çağırarak commit/rollback'i atlar
type TxRunner interface {
	RunInTx(fn TransactionFunc) error
}

// Runner gerçek database üzerinde WithTransaction'ı saran TxRunner
type Runner struct {
	database *sql.DB
}

// NewRunner yeni transaction runner oluşturur
func NewRunner(database *sql.DB) *Runner {
	return &Runner{database: database}
}

// RunInTx fn'i tek bir database transaction'ı içinde çalıştırır
func (r *Runner) RunInTx(fn TransactionFunc) error {
	return WithTransaction(r.database, fn)
}

// Querier *sql.DB ve *sql.Tx'in ortak sorgu arayüzü
// Repository'ler hem bağlantı hem transaction üzerinde çalışabilir
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}
