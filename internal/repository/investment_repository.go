package repository

import (
	"database/sql"
	"fmt"

	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
)

// investmentColumns investments tablosundan okunan kolonlar
const investmentColumns = `id, user_id, package_id, amount, rate, total_profit, status, start_date, end_date`

// InvestmentRepository yatırım database işlemleri
type InvestmentRepository struct {
	q db.Querier
}

// NewInvestmentRepository yeni repository oluşturur
func NewInvestmentRepository(database *sql.DB) *InvestmentRepository {
	return &InvestmentRepository{q: database}
}

// WithTx transaction'a bağlı repository kopyası döner
func (r *InvestmentRepository) WithTx(tx *sql.Tx) *InvestmentRepository {
	return &InvestmentRepository{q: tx}
}

// scanInvestment tek satırı Investment modeline okur
func scanInvestment(row *sql.Row) (*models.Investment, error) {
	var inv models.Investment
	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&inv.PackageID,
		&inv.Amount,
		&inv.Rate,
		&inv.TotalProfit,
		&inv.Status,
		&inv.StartDate,
		&inv.EndDate,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByID ID ile yatırım getirir
func (r *InvestmentRepository) GetByID(id int) (*models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1`

	inv, err := scanInvestment(r.q.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("yatırım bulunamadı")
		}
		return nil, fmt.Errorf("yatırım arama hatası: %w", err)
	}

	return inv, nil
}

// GetActiveByUserID kullanıcının aktif yatırımını getirir, yoksa nil döner
func (r *InvestmentRepository) GetActiveByUserID(userID int) (*models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE user_id = $1 AND status = $2`

	inv, err := scanInvestment(r.q.QueryRow(query, userID, models.InvestmentActive))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("aktif yatırım sorgusu hatası: %w", err)
	}

	return inv, nil
}

// GetByUserID kullanıcının tüm yatırımlarını getirir (en yeni önce)
func (r *InvestmentRepository) GetByUserID(userID int) ([]*models.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE user_id = $1
		ORDER BY start_date DESC
	`

	rows, err := r.q.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("yatırım listesi sorgusu hatası: %w", err)
	}

	return scanInvestments(rows)
}

// GetAllActive tüm aktif yatırımları getirir (compound batch'i için)
func (r *InvestmentRepository) GetAllActive() ([]*models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE status = $1 ORDER BY id`

	rows, err := r.q.Query(query, models.InvestmentActive)
	if err != nil {
		return nil, fmt.Errorf("aktif yatırım sorgusu hatası: %w", err)
	}

	return scanInvestments(rows)
}

// scanInvestments sorgu sonucunu Investment listesine okur
func scanInvestments(rows *sql.Rows) ([]*models.Investment, error) {
	defer rows.Close()

	var investments []*models.Investment
	for rows.Next() {
		var inv models.Investment
		err := rows.Scan(
			&inv.ID,
			&inv.UserID,
			&inv.PackageID,
			&inv.Amount,
			&inv.Rate,
			&inv.TotalProfit,
			&inv.Status,
			&inv.StartDate,
			&inv.EndDate,
		)
		if err != nil {
			return nil, fmt.Errorf("yatırım scan hatası: %w", err)
		}
		investments = append(investments, &inv)
	}

	return investments, rows.Err()
}

// Create yeni yatırım oluşturur
func (r *InvestmentRepository) Create(userID, packageID int, amount, rate float64) (*models.Investment, error) {
	query := `
		INSERT INTO investments (user_id, package_id, amount, rate, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + investmentColumns

	inv, err := scanInvestment(r.q.QueryRow(query, userID, packageID, amount, rate, models.InvestmentActive))
	if err != nil {
		return nil, fmt.Errorf("yatırım oluşturulamadı: %w", err)
	}

	return inv, nil
}

// Upgrade yatırımın tutarını, oranını ve paketini günceller
func (r *InvestmentRepository) Upgrade(id int, newAmount, newRate float64, packageID int) (*models.Investment, error) {
	query := `
		UPDATE investments
		SET amount = $1, rate = $2, package_id = $3
		WHERE id = $4
		RETURNING ` + investmentColumns

	inv, err := scanInvestment(r.q.QueryRow(query, newAmount, newRate, packageID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("yatırım bulunamadı")
		}
		return nil, fmt.Errorf("yatırım güncellenemedi: %w", err)
	}

	return inv, nil
}

// ApplyProfit compound sonucu kârı hem anaparaya hem toplam kâra ekler
func (r *InvestmentRepository) ApplyProfit(id int, profit float64) error {
	query := `
		UPDATE investments
		SET amount = amount + $1, total_profit = total_profit + $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.Exec(query, profit, id, models.InvestmentActive)
	if err != nil {
		return fmt.Errorf("kâr işlenemedi: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("kâr işleme sonucu okunamadı: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("aktif yatırım bulunamadı")
	}

	return nil
}

// Close yatırımın durumunu kapatır (canceled/completed) ve bitiş tarihini yazar
func (r *InvestmentRepository) Close(id int, status string) error {
	query := `
		UPDATE investments
		SET status = $1, end_date = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.Exec(query, status, id, models.InvestmentActive)
	if err != nil {
		return fmt.Errorf("yatırım kapatılamadı: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("yatırım kapatma sonucu okunamadı: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("aktif yatırım bulunamadı")
	}

	return nil
}

// SumActiveAmountsByUser tüm kullanıcıların aktif yatırım toplamlarını tek sorguda döner
// Ağaç hacim hesapları node başına sorgu yerine bu haritayı kullanır
func (r *InvestmentRepository) SumActiveAmountsByUser() (map[int]float64, error) {
	query := `
		SELECT user_id, COALESCE(SUM(amount), 0)
		FROM investments
		WHERE status = $1
		GROUP BY user_id
	`

	rows, err := r.q.Query(query, models.InvestmentActive)
	if err != nil {
		return nil, fmt.Errorf("hacim toplamı sorgusu hatası: %w", err)
	}
	defer rows.Close()

	sums := make(map[int]float64)
	for rows.Next() {
		var userID int
		var total float64
		if err := rows.Scan(&userID, &total); err != nil {
			return nil, fmt.Errorf("hacim toplamı scan hatası: %w", err)
		}
		sums[userID] = total
	}

	return sums, rows.Err()
}
