package models

import "time"

// Investment durumları
const (
	InvestmentActive    = "active"
	InvestmentCompleted = "completed"
	InvestmentCanceled  = "canceled"
)

// Investment bir kullanıcının aktif yatırımını temsil eder
// Kullanıcı başına en fazla bir aktif yatırım bulunur; yeni yatırımlar mevcut olana eklenir
type Investment struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	PackageID   int        `json:"package_id" db:"package_id"`
	Amount      float64    `json:"amount" db:"amount"`
	Rate        float64    `json:"rate" db:"rate"`
	TotalProfit float64    `json:"total_profit" db:"total_profit"`
	Status      string     `json:"status" db:"status"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     *time.Time `json:"end_date" db:"end_date"`
}

// CreateInvestmentRequest yatırım açma/yükseltme isteği
type CreateInvestmentRequest struct {
	Amount float64 `json:"amount"`
}

// InvestmentResult yatırım işleminin sonucu
type InvestmentResult struct {
	Investment *Investment `json:"investment"`
	TierName   string      `json:"tier_name"`
	Upgraded   bool        `json:"upgraded"`
}
