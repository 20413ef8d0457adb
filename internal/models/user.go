package models

import (
	"time"
)

// Balance alan adları (users tablosundaki kolonlar)
// AddToBalance sadece bu alanları kabul eder
const (
	FieldMainBalance            = "main_balance"
	FieldProfitBalance          = "profit_balance"
	FieldReferralBalance        = "referral_balance"
	FieldBonusBalance           = "bonus_balance"
	FieldMaxCapBalance          = "max_cap_balance"
	FieldWithdrawalTotalBalance = "withdrawal_total_balance"
)

// User kullanıcı modelini temsil eder
type User struct {
	ID           int     `json:"id" db:"id"`
	FirstName    string  `json:"first_name" db:"first_name"`
	LastName     string  `json:"last_name" db:"last_name"`
	Email        string  `json:"email" db:"email"`
	ReferralCode string  `json:"referral_code" db:"referral_code"`
	ReferredBy   *string `json:"referred_by" db:"referred_by"`

	// Bakiyeler (sadece AddToBalance ile değişir)
	MainBalance            float64 `json:"main_balance" db:"main_balance"`
	ProfitBalance          float64 `json:"profit_balance" db:"profit_balance"`
	ReferralBalance        float64 `json:"referral_balance" db:"referral_balance"`
	BonusBalance           float64 `json:"bonus_balance" db:"bonus_balance"`
	MaxCapBalance          float64 `json:"max_cap_balance" db:"max_cap_balance"`
	WithdrawalTotalBalance float64 `json:"withdrawal_total_balance" db:"withdrawal_total_balance"`

	// Binary eşleşme carry-forward sayaçları (bacak başına, monoton artan)
	BinaryMatchedLeft  float64 `json:"binary_matched_left" db:"binary_matched_left"`
	BinaryMatchedRight float64 `json:"binary_matched_right" db:"binary_matched_right"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BalanceSnapshot kullanıcının bakiye özetini temsil eder
type BalanceSnapshot struct {
	MainBalance     float64 `json:"main_balance"`
	ProfitBalance   float64 `json:"profit_balance"`
	ReferralBalance float64 `json:"referral_balance"`
	BonusBalance    float64 `json:"bonus_balance"`
}

// Balances kullanıcının bakiye özetini döner
func (u *User) Balances() BalanceSnapshot {
	return BalanceSnapshot{
		MainBalance:     u.MainBalance,
		ProfitBalance:   u.ProfitBalance,
		ReferralBalance: u.ReferralBalance,
		BonusBalance:    u.BonusBalance,
	}
}

// FullName kullanıcının tam adını döner
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsBalanceField alan adının geçerli bir bakiye kolonu olup olmadığını kontrol eder
func IsBalanceField(field string) bool {
	switch field {
	case FieldMainBalance, FieldProfitBalance, FieldReferralBalance,
		FieldBonusBalance, FieldMaxCapBalance, FieldWithdrawalTotalBalance:
		return true
	}
	return false
}
