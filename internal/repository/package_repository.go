package repository

import (
	"database/sql"
	"fmt"

	"github.com/finalxcard/invest-api/internal/models"
)

// PackageRepository yatırım paketi database işlemleri
type PackageRepository struct {
	db *sql.DB
}

// NewPackageRepository yeni repository oluşturur
func NewPackageRepository(db *sql.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

// packageColumns packages tablosundan okunan kolonlar
const packageColumns = `id, name, min_deposit, max_deposit, rate, description, is_active, created_at`

// scanPackages sorgu sonucunu Package listesine okur
func scanPackages(rows *sql.Rows) ([]*models.Package, error) {
	defer rows.Close()

	var packages []*models.Package
	for rows.Next() {
		var p models.Package
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.MinDeposit,
			&p.MaxDeposit,
			&p.Rate,
			&p.Description,
			&p.IsActive,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("paket scan hatası: %w", err)
		}
		packages = append(packages, &p)
	}

	return packages, rows.Err()
}

// GetAllActive aktif paketleri getirir
// min_deposit TEXT olduğu için nihai sıralama catalog service'te normalize edilerek yapılır
func (r *PackageRepository) GetAllActive() ([]*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE is_active = TRUE`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("paket sorgusu hatası: %w", err)
	}

	return scanPackages(rows)
}

// GetAll tüm paketleri getirir (admin listesi)
func (r *PackageRepository) GetAll() ([]*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("paket sorgusu hatası: %w", err)
	}

	return scanPackages(rows)
}

// GetByID ID ile paket getirir
func (r *PackageRepository) GetByID(id int) (*models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`

	var p models.Package
	err := r.db.QueryRow(query, id).Scan(
		&p.ID,
		&p.Name,
		&p.MinDeposit,
		&p.MaxDeposit,
		&p.Rate,
		&p.Description,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("paket bulunamadı")
		}
		return nil, fmt.Errorf("paket arama hatası: %w", err)
	}

	return &p, nil
}

// Create yeni paket oluşturur
func (r *PackageRepository) Create(req *models.CreatePackageRequest) (*models.Package, error) {
	query := `
		INSERT INTO packages (name, min_deposit, max_deposit, rate, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + packageColumns

	var p models.Package
	err := r.db.QueryRow(query, req.Name, req.MinDeposit, req.MaxDeposit, req.Rate, req.Description).Scan(
		&p.ID,
		&p.Name,
		&p.MinDeposit,
		&p.MaxDeposit,
		&p.Rate,
		&p.Description,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("paket oluşturulamadı: %w", err)
	}

	return &p, nil
}

// Update paket bilgilerini günceller (nil alanlar dokunulmaz)
func (r *PackageRepository) Update(id int, req *models.UpdatePackageRequest) (*models.Package, error) {
	query := `
		UPDATE packages
		SET name        = COALESCE($1, name),
		    min_deposit = COALESCE($2, min_deposit),
		    max_deposit = COALESCE($3, max_deposit),
		    rate        = COALESCE($4, rate),
		    description = COALESCE($5, description),
		    is_active   = COALESCE($6, is_active)
		WHERE id = $7
		RETURNING ` + packageColumns

	var p models.Package
	err := r.db.QueryRow(query, req.Name, req.MinDeposit, req.MaxDeposit, req.Rate, req.Description, req.IsActive, id).Scan(
		&p.ID,
		&p.Name,
		&p.MinDeposit,
		&p.MaxDeposit,
		&p.Rate,
		&p.Description,
		&p.IsActive,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("paket bulunamadı")
		}
		return nil, fmt.Errorf("paket güncellenemedi: %w", err)
	}

	return &p, nil
}

// CountReferencingInvestments pakete bağlı yatırım sayısını döner
// Silme öncesi referans kontrolü için kullanılır
func (r *PackageRepository) CountReferencingInvestments(packageID int) (int, error) {
	query := `SELECT COUNT(*) FROM investments WHERE package_id = $1`

	var count int
	if err := r.db.QueryRow(query, packageID).Scan(&count); err != nil {
		return 0, fmt.Errorf("paket referans sayısı alınamadı: %w", err)
	}

	return count, nil
}

// Delete paketi siler
func (r *PackageRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("paket silinemedi: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("paket silme sonucu okunamadı: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("paket bulunamadı")
	}

	return nil
}
