package models

import "time"

// Binary ağaç pozisyonları
const (
	PositionLeft  = "left"
	PositionRight = "right"
)

// Referral binary ağaçtaki bir kenarı temsil eder (parent → child)
// child tüm kenarlar içinde tekildir; (parent, position) çifti de tekildir
type Referral struct {
	ID        int       `json:"id" db:"id"`
	ParentID  int       `json:"parent_id" db:"parent_id"`
	ChildID   int       `json:"child_id" db:"child_id"`
	Position  string    `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsValidPosition pozisyon değerini doğrular
func IsValidPosition(pos string) bool {
	return pos == PositionLeft || pos == PositionRight
}

// PlaceRequest ağaca yerleştirme isteği
type PlaceRequest struct {
	ParentCode string `json:"parent_code"`
	UserID     int    `json:"user_id"`
	Position   string `json:"position"`
}

// SubtreeStats bir kullanıcının bacak istatistikleri
type SubtreeStats struct {
	UserID      int     `json:"user_id"`
	LeftVolume  float64 `json:"left_volume"`
	RightVolume float64 `json:"right_volume"`
	LeftCount   int     `json:"left_count"`
	RightCount  int     `json:"right_count"`
}

// TreeNode renderTree çıktısındaki tek bir düğüm
type TreeNode struct {
	UserID      int             `json:"user_id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Code        string          `json:"referral_code"`
	Balances    BalanceSnapshot `json:"balances"`
	LeftVolume  float64         `json:"left_volume"`
	RightVolume float64         `json:"right_volume"`
	LeftCount   int             `json:"left_count"`
	RightCount  int             `json:"right_count"`
	Left        *TreeNode       `json:"left"`
	Right       *TreeNode       `json:"right"`
}

// PayoutResult binary payout yürüyüşünün özeti
type PayoutResult struct {
	LevelsProcessed int     `json:"levels_processed"`
	TotalPaid       float64 `json:"total_paid"`
}

// Bonus lider bonus kaydını temsil eder (alt üye başına bir kez)
type Bonus struct {
	ID             int       `json:"id" db:"id"`
	UserID         int       `json:"user_id" db:"user_id"`
	ReferredUserID int       `json:"referred_user_id" db:"referred_user_id"`
	Amount         float64   `json:"amount" db:"amount"`
	Type           string    `json:"type" db:"type"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
