package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
)

// ErrInsufficientBalance guarded debit'in bakiye yetersiz sinyali
var ErrInsufficientBalance = errors.New("yetersiz bakiye")

// userColumns users tablosundan okunan kolonlar
const userColumns = `
	id, first_name, last_name, email, referral_code, referred_by,
	main_balance, profit_balance, referral_balance, bonus_balance,
	max_cap_balance, withdrawal_total_balance,
	binary_matched_left, binary_matched_right,
	is_active, created_at
`

// UserRepository kullanıcı database işlemleri
type UserRepository struct {
	q db.Querier
}

// NewUserRepository yeni repository oluşturur
func NewUserRepository(database *sql.DB) *UserRepository {
	return &UserRepository{q: database}
}

// WithTx transaction'a bağlı repository kopyası döner
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

// scanUser tek satırı User modeline okur
func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.ReferralCode,
		&user.ReferredBy,
		&user.MainBalance,
		&user.ProfitBalance,
		&user.ReferralBalance,
		&user.BonusBalance,
		&user.MaxCapBalance,
		&user.WithdrawalTotalBalance,
		&user.BinaryMatchedLeft,
		&user.BinaryMatchedRight,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID ID ile kullanıcı bulur
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("kullanıcı bulunamadı")
		}
		return nil, fmt.Errorf("kullanıcı arama hatası: %w", err)
	}

	return user, nil
}

// GetByReferralCode referans kodu ile kullanıcı bulur
func (r *UserRepository) GetByReferralCode(code string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`

	user, err := scanUser(r.q.QueryRow(query, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("referans kodu bulunamadı")
		}
		return nil, fmt.Errorf("kullanıcı arama hatası: %w", err)
	}

	return user, nil
}

// AddToBalance kullanıcının bakiye alanını atomik olarak artırır/azaltır
// read-modify-write yerine tek UPDATE ile increment yapılır (lost update olmaz)
func (r *UserRepository) AddToBalance(userID int, field string, delta float64) error {
	// Alan adı whitelist kontrolü (SQL injection'a karşı)
	if !models.IsBalanceField(field) {
		return fmt.Errorf("geçersiz bakiye alanı: %s", field)
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = %s + $1
		WHERE id = $2
	`, field, field)

	result, err := r.q.Exec(query, delta, userID)
	if err != nil {
		return fmt.Errorf("bakiye güncellenemedi: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("bakiye güncelleme sonucu okunamadı: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("kullanıcı bulunamadı")
	}

	return nil
}

// TryDebit bakiyeden düşmeyi dener; bakiye yetersizse hiç dokunmadan
// ErrInsufficientBalance döner. Kontrol ve düşme tek UPDATE içinde yapılır,
// eşzamanlı isteklerde bakiye eksiye düşemez
func (r *UserRepository) TryDebit(userID int, field string, amount float64) error {
	if !models.IsBalanceField(field) {
		return fmt.Errorf("geçersiz bakiye alanı: %s", field)
	}
	if amount <= 0 {
		return fmt.Errorf("düşülecek tutar pozitif olmalı")
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = %s - $1
		WHERE id = $2 AND %s >= $1
	`, field, field, field)

	result, err := r.q.Exec(query, amount, userID)
	if err != nil {
		return fmt.Errorf("bakiye düşülemedi: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("bakiye düşme sonucu okunamadı: %w", err)
	}
	if rows == 0 {
		return ErrInsufficientBalance
	}

	return nil
}

// GetByIDs toplu kullanıcı okuma (ağaç render'ında N+1 sorguyu önler)
func (r *UserRepository) GetByIDs(ids []int) (map[int]*models.User, error) {
	users := make(map[int]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := r.q.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("kullanıcılar sorgulanamadı: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.ReferralCode,
			&user.ReferredBy,
			&user.MainBalance,
			&user.ProfitBalance,
			&user.ReferralBalance,
			&user.BonusBalance,
			&user.MaxCapBalance,
			&user.WithdrawalTotalBalance,
			&user.BinaryMatchedLeft,
			&user.BinaryMatchedRight,
			&user.IsActive,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("kullanıcı satırı okunamadı: %w", err)
		}
		users[user.ID] = &user
	}

	return users, rows.Err()
}

// CountDirectReferrals kullanıcının doğrudan davet ettiği üye sayısı
// (rate boost eşiği bu sayıya bakar)
func (r *UserRepository) CountDirectReferrals(referralCode string) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE referred_by = $1`

	var count int
	if err := r.q.QueryRow(query, referralCode).Scan(&count); err != nil {
		return 0, fmt.Errorf("referans sayısı okunamadı: %w", err)
	}

	return count, nil
}

// IncrementBinaryMatched her iki bacağın eşleşmiş hacim sayaçlarını artırır
// payout yürüyüşünde bakiye kredisiyle aynı transaction içinde çağrılır
func (r *UserRepository) IncrementBinaryMatched(userID int, leftDelta, rightDelta float64) error {
	query := `
		UPDATE users
		SET binary_matched_left  = binary_matched_left + $1,
		    binary_matched_right = binary_matched_right + $2
		WHERE id = $3
	`

	result, err := r.q.Exec(query, leftDelta, rightDelta, userID)
	if err != nil {
		return fmt.Errorf("eşleşmiş hacim güncellenemedi: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("eşleşmiş hacim güncelleme sonucu okunamadı: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("kullanıcı bulunamadı")
	}

	return nil
}

// SetReferredBy kullanıcının uplink referans kodunu kaydeder (bir kez yazılır)
// Kullanıcı kayıt sırasında kod girdiyse referred_by zaten dolu olur;
// o durumda false döner ve mevcut değer korunur
func (r *UserRepository) SetReferredBy(userID int, code string) (bool, error) {
	query := `
		UPDATE users
		SET referred_by = $1
		WHERE id = $2 AND referred_by IS NULL
	`

	result, err := r.q.Exec(query, code, userID)
	if err != nil {
		return false, fmt.Errorf("referans bilgisi güncellenemedi: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("referans güncelleme sonucu okunamadı: %w", err)
	}

	return rows > 0, nil
}
