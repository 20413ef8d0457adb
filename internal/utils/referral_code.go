package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewReferralCode benzersiz referans kodu üretir (VX-XXXXXXXX formatında)
// UUID tabanlı olduğu için çakışma pratikte imkansızdır; yine de
// users.referral_code üzerindeki unique constraint son sözü söyler
func NewReferralCode() string {
	id := uuid.NewString()
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))[:8]
	return "VX-" + short
}
