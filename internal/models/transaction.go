package models

import "time"

// Transaction tipleri (ledger kayıtları)
const (
	TxInvestment        = "investment"
	TxInvestmentInit    = "investment-init"
	TxInvestmentUpgrade = "investment-upgrade"
	TxInvestmentError   = "investment-error"
	TxProfit            = "profit"
	TxBinaryProfit      = "binary-profit"
	TxBinaryProfitSkip  = "binary-profit-skip"
	TxBonus             = "bonus"
	TxRefund            = "refund"
	TxTransfer          = "transfer"
	TxWithdraw          = "withdraw"
)

// Transaction durumları
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Transaction append-only ledger kaydını temsil eder
type Transaction struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Amount    float64   `json:"amount" db:"amount"`
	Currency  string    `json:"currency" db:"currency"`
	Status    string    `json:"status" db:"status"`
	Reference string    `json:"reference" db:"reference"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LedgerEntry yeni ledger kaydı isteği; Append çağrısının girdisi
type LedgerEntry struct {
	UserID   int
	Type     string
	Amount   float64
	Currency string
	Status   string
	Note     string
}

// TransferRequest bakiyeler arası transfer isteği (profit/referral/bonus → main)
type TransferRequest struct {
	From   string  `json:"from"`
	Amount float64 `json:"amount"`
}

// WithdrawRequest para çekme isteği
type WithdrawRequest struct {
	Amount float64 `json:"amount"`
}
