// internal/interfaces/service.go
package interfaces

import (
	"time"

	"github.com/finalxcard/invest-api/internal/models"
)

// CatalogServiceInterface paket kataloğu business logic için interface
type CatalogServiceInterface interface {
	// ListActive aktif paketleri sıralı döner
	ListActive() ([]*models.Package, error)

	// FindTierForAmount tutara karşılık gelen paketi seçer
	FindTierForAmount(amount float64) (*models.Package, error)

	// GetAll tüm paketleri döner
	GetAll() ([]*models.Package, error)

	// CreatePackage yeni paket tanımlar
	CreatePackage(req *models.CreatePackageRequest) (*models.Package, error)

	// UpdatePackage paket bilgilerini günceller
	UpdatePackage(id int, req *models.UpdatePackageRequest) (*models.Package, error)

	// DeletePackage paketi siler veya pasife alır
	DeletePackage(id int) error
}

// InvestmentServiceInterface yatırım business logic için interface
type InvestmentServiceInterface interface {
	// OpenOrUpgrade yeni yatırım açar veya mevcut yatırıma ekler
	OpenOrUpgrade(userID int, req *models.CreateInvestmentRequest) (*models.InvestmentResult, error)

	// Cancel aktif yatırımı iptal eder ve anaparayı iade eder
	Cancel(userID int) (*models.Investment, error)

	// CompoundAll tüm aktif yatırımlara günlük kârı işler
	CompoundAll() (int, float64, error)

	// CompoundAllIfBusinessDay tatil günlerinde compound'u atlar
	CompoundAllIfBusinessDay(now time.Time) (int, float64, error)

	// GetActive kullanıcının aktif yatırımını döner
	GetActive(userID int) (*models.Investment, error)

	// GetUserInvestments yatırım geçmişini döner
	GetUserInvestments(userID int) ([]*models.Investment, error)
}

// TreeServiceInterface binary ağaç business logic için interface
type TreeServiceInterface interface {
	// Place kullanıcıyı ağaca yerleştirir
	Place(req *models.PlaceRequest) (*models.Referral, error)

	// GetSubtreeStats sol/sağ bacak istatistiklerini döner
	GetSubtreeStats(userID int) (*models.SubtreeStats, error)

	// RenderTree kullanıcıdan aşağıya ağacı çizer
	RenderTree(rootID, maxDepth int) (*models.TreeNode, error)

	// GetUpline ata zincirini döner
	GetUpline(userID int) ([]*models.Referral, error)
}

// PayoutServiceInterface binary payout business logic için interface
type PayoutServiceInterface interface {
	// RunBinaryPayout ata zinciri boyunca eşleşme ödemelerini işler
	RunBinaryPayout(startUserID int) (*models.PayoutResult, error)
}

// ActivityServiceInterface bakiye hareketleri için interface
type ActivityServiceInterface interface {
	// TransferToMain kazanç bakiyesinden ana bakiyeye aktarım yapar
	TransferToMain(userID int, req *models.TransferRequest) (*models.Transaction, error)

	// RequestWithdrawal para çekme talebi oluşturur
	RequestWithdrawal(userID int, req *models.WithdrawRequest) (*models.Transaction, error)

	// GetHistory ledger geçmişini döner
	GetHistory(userID int, limit, offset int) ([]*models.Transaction, error)

	// GetBalances güncel bakiye özetini döner
	GetBalances(userID int) (*models.User, error)
}

// BonusServiceInterface lider bonusu business logic için interface
type BonusServiceInterface interface {
	// GrantFirstDepositBonus ilk yatırım bonusunu sponsora işler
	GrantFirstDepositBonus(downline *models.User, depositAmount float64) error
}
