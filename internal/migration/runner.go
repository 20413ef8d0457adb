// internal/migration/runner.go
package migration

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Migration tek bir veritabanı migration'ını temsil eder
type Migration struct {
	Version   int64      `json:"version"`
	Name      string     `json:"name"`
	UpSQL     string     `json:"-"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"appliedAt,omitempty"`
	Checksum  string     `json:"checksum"`
}

// Status migration sisteminin genel durumunu gösterir
type Status struct {
	CurrentVersion int64       `json:"currentVersion"`
	Migrations     []Migration `json:"migrations"`
	AppliedCount   int         `json:"appliedCount"`
	PendingCount   int         `json:"pendingCount"`
}

// Runner versiyonlu SQL migration'larını yöneten yapı
// Dosya adı formatı: <version>_<name>.up.sql (version: YYYYMMDDHHMMSS)
type Runner struct {
	db    *sql.DB
	path  string
	table string
}

// NewRunner yeni migration runner oluşturur
func NewRunner(db *sql.DB, path string) *Runner {
	if path == "" {
		path = "./migrations"
	}
	return &Runner{
		db:    db,
		path:  path,
		table: "schema_migrations",
	}
}

// Initialize migration tracking tablosunu oluşturur
func (r *Runner) Initialize() error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			checksum VARCHAR(64) NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, r.table)

	if _, err := r.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("migration tracking tablosu oluşturulamadı: %w", err)
	}

	log.Info().Str("table", r.table).Str("path", r.path).Msg("Migration sistemi initialize edildi")
	return nil
}

// loadFiles migration dosyalarını version sırasına göre okur
func (r *Runner) loadFiles() ([]Migration, error) {
	entries, err := os.ReadDir(r.path)
	if err != nil {
		return nil, fmt.Errorf("migration klasörü okunamadı: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		base := strings.TrimSuffix(name, ".up.sql")
		parts := strings.SplitN(base, "_", 2)
		if len(parts) != 2 {
			log.Warn().Str("file", name).Msg("Migration dosya adı parse edilemedi, atlandı")
			continue
		}

		version, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			log.Warn().Str("file", name).Msg("Migration version parse edilemedi, atlandı")
			continue
		}

		content, err := os.ReadFile(filepath.Join(r.path, name))
		if err != nil {
			return nil, fmt.Errorf("migration dosyası okunamadı (%s): %w", name, err)
		}

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     parts[1],
			UpSQL:    string(content),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// loadApplied uygulanan migration'ları tracking tablosundan okur
func (r *Runner) loadApplied() (map[int64]time.Time, error) {
	query := fmt.Sprintf(`SELECT version, applied_at FROM %s`, r.table)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("uygulanan migration'lar okunamadı: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]time.Time)
	for rows.Next() {
		var version int64
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, err
		}
		applied[version] = appliedAt
	}

	return applied, rows.Err()
}

// GetStatus tüm migration'ların durumunu döner
func (r *Runner) GetStatus() (*Status, error) {
	migrations, err := r.loadFiles()
	if err != nil {
		return nil, err
	}

	applied, err := r.loadApplied()
	if err != nil {
		return nil, err
	}

	status := &Status{}
	for i := range migrations {
		if appliedAt, ok := applied[migrations[i].Version]; ok {
			migrations[i].Applied = true
			migrations[i].AppliedAt = &appliedAt
			status.AppliedCount++
			if migrations[i].Version > status.CurrentVersion {
				status.CurrentVersion = migrations[i].Version
			}
		} else {
			status.PendingCount++
		}
	}
	status.Migrations = migrations

	return status, nil
}

// RunUp bekleyen migration'ları version sırasıyla uygular
// Her migration kendi transaction'ında çalışır; hata durumunda o migration
// geri alınır ve sıradakiler uygulanmaz
func (r *Runner) RunUp() (int, error) {
	if err := r.Initialize(); err != nil {
		return 0, err
	}

	status, err := r.GetStatus()
	if err != nil {
		return 0, err
	}

	appliedNow := 0
	for _, m := range status.Migrations {
		if m.Applied {
			continue
		}

		start := time.Now()

		tx, err := r.db.Begin()
		if err != nil {
			return appliedNow, fmt.Errorf("transaction başlatılamadı: %w", err)
		}

		if _, err := tx.Exec(m.UpSQL); err != nil {
			tx.Rollback()
			return appliedNow, fmt.Errorf("migration %d (%s) başarısız: %w", m.Version, m.Name, err)
		}

		insertSQL := fmt.Sprintf(`INSERT INTO %s (version, name, checksum) VALUES ($1, $2, $3)`, r.table)
		if _, err := tx.Exec(insertSQL, m.Version, m.Name, m.Checksum); err != nil {
			tx.Rollback()
			return appliedNow, fmt.Errorf("migration kaydı yazılamadı: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return appliedNow, fmt.Errorf("migration commit hatası: %w", err)
		}

		appliedNow++
		log.Info().
			Int64("version", m.Version).
			Str("name", m.Name).
			Dur("duration", time.Since(start)).
			Msg("✅ Migration uygulandı")
	}

	if appliedNow == 0 {
		log.Info().Msg("Bekleyen migration yok")
	}

	return appliedNow, nil
}
