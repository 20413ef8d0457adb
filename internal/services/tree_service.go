package services

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/apperrors"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/repository"
)

// TreeService binary referans ağacı: yerleştirme, hacim ve render
type TreeService struct {
	txRunner       db.TxRunner
	userRepo       *repository.UserRepository
	referralRepo   *repository.ReferralRepository
	investmentRepo *repository.InvestmentRepository
}

// NewTreeService yeni service oluşturur
func NewTreeService(
	txRunner db.TxRunner,
	userRepo *repository.UserRepository,
	referralRepo *repository.ReferralRepository,
	investmentRepo *repository.InvestmentRepository,
) *TreeService {
	return &TreeService{
		txRunner:       txRunner,
		userRepo:       userRepo,
		referralRepo:   referralRepo,
		investmentRepo: investmentRepo,
	}
}

// Place kullanıcıyı ağaçta parent'ın verilen bacağına yerleştirir
// Tekillik DB constraint'lerine bırakılır; döngü kontrolü yerleştirme
// öncesi ata zincirinde yapılır
func (s *TreeService) Place(req *models.PlaceRequest) (*models.Referral, error) {
	if !models.IsValidPosition(req.Position) {
		return nil, apperrors.InvalidInput("pozisyon left veya right olmalı")
	}

	parent, err := s.userRepo.GetByReferralCode(req.ParentCode)
	if err != nil {
		return nil, apperrors.NotFound("referans kodu bulunamadı")
	}

	child, err := s.userRepo.GetByID(req.UserID)
	if err != nil {
		return nil, apperrors.NotFound("kullanıcı bulunamadı")
	}

	if parent.ID == child.ID {
		return nil, apperrors.CycleDetected("kullanıcı kendi altına yerleştirilemez")
	}

	// Ata zinciri yürüyüşü: child parent'ın atasıysa kenar döngü yaratır
	cursor := parent.ID
	for {
		edge, err := s.referralRepo.GetByChildID(cursor)
		if err != nil {
			return nil, apperrors.Upstream("ata zinciri okunamadı", err)
		}
		if edge == nil {
			break
		}
		if edge.ParentID == child.ID {
			return nil, apperrors.CycleDetected("yerleştirme ağaçta döngü oluşturur")
		}
		cursor = edge.ParentID
	}

	var placed *models.Referral

	txErr := s.txRunner.RunInTx(func(tx *sql.Tx) error {
		referralRepo := s.referralRepo.WithTx(tx)
		userRepo := s.userRepo.WithTx(tx)

		edge, err := referralRepo.Create(parent.ID, child.ID, req.Position)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrChildAlreadyPlaced):
				return apperrors.StateConflict("kullanıcı zaten ağaca yerleştirilmiş")
			case errors.Is(err, repository.ErrPositionTaken):
				return apperrors.StateConflict("bu pozisyon dolu")
			}
			return err
		}

		// Kayıt sırasında kod girilmediyse sponsor burada bağlanır
		if _, err := userRepo.SetReferredBy(child.ID, parent.ReferralCode); err != nil {
			return err
		}

		placed = edge
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int("parent_id", parent.ID).
		Int("child_id", child.ID).
		Str("position", req.Position).
		Msg("🌳 Kullanıcı ağaca yerleştirildi")

	return placed, nil
}

// TreeIndex kenar kümesi ve yatırım hacimlerinin bellek içi görüntüsü
// Alt ağaç hesapları node başına sorgu yerine bu index üzerinde yapılır
type TreeIndex struct {
	children map[int]map[string]int
	volumes  map[int]float64
	memoVol  map[int]float64
	memoCnt  map[int]int
}

// BuildIndex tüm kenarları ve aktif yatırım toplamlarını tek seferde yükler
func (s *TreeService) BuildIndex() (*TreeIndex, error) {
	edges, err := s.referralRepo.GetAllEdges()
	if err != nil {
		return nil, apperrors.Upstream("kenar kümesi yüklenemedi", err)
	}

	volumes, err := s.investmentRepo.SumActiveAmountsByUser()
	if err != nil {
		return nil, apperrors.Upstream("hacim toplamları yüklenemedi", err)
	}

	idx := &TreeIndex{
		children: make(map[int]map[string]int, len(edges)),
		volumes:  volumes,
		memoVol:  make(map[int]float64),
		memoCnt:  make(map[int]int),
	}

	for _, edge := range edges {
		if idx.children[edge.ParentID] == nil {
			idx.children[edge.ParentID] = make(map[string]int, 2)
		}
		idx.children[edge.ParentID][edge.Position] = edge.ChildID
	}

	return idx, nil
}

// Child verilen bacaktaki çocuğu döner (yoksa 0, false)
func (idx *TreeIndex) Child(userID int, position string) (int, bool) {
	childID, ok := idx.children[userID][position]
	return childID, ok
}

// SubtreeVolume node dahil alt ağaçtaki aktif yatırım toplamı
// Yerleştirme kontrolleri ağacı döngüsüz tuttuğu için yürüyüş sonlanır
func (idx *TreeIndex) SubtreeVolume(userID int) float64 {
	if v, ok := idx.memoVol[userID]; ok {
		return v
	}

	// Recursion yerine stack: derin bacaklarda stack overflow olmaz
	stack := []int{userID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		if _, done := idx.memoVol[id]; done {
			stack = stack[:len(stack)-1]
			continue
		}

		pending := false
		for _, childID := range idx.children[id] {
			if _, done := idx.memoVol[childID]; !done {
				stack = append(stack, childID)
				pending = true
			}
		}
		if pending {
			continue
		}

		total := idx.volumes[id]
		count := 1
		for _, childID := range idx.children[id] {
			total += idx.memoVol[childID]
			count += idx.memoCnt[childID]
		}
		idx.memoVol[id] = total
		idx.memoCnt[id] = count
		stack = stack[:len(stack)-1]
	}

	return idx.memoVol[userID]
}

// SubtreeCount node dahil alt ağaçtaki kullanıcı sayısı
func (idx *TreeIndex) SubtreeCount(userID int) int {
	idx.SubtreeVolume(userID) // memo'ları doldurur
	return idx.memoCnt[userID]
}

// legStats verilen bacağın hacim ve kullanıcı sayısını döner
func (idx *TreeIndex) legStats(userID int, position string) (float64, int) {
	childID, ok := idx.Child(userID, position)
	if !ok {
		return 0, 0
	}
	return idx.SubtreeVolume(childID), idx.SubtreeCount(childID)
}

// GetSubtreeStats kullanıcının sol/sağ bacak istatistiklerini döner
func (s *TreeService) GetSubtreeStats(userID int) (*models.SubtreeStats, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, apperrors.NotFound("kullanıcı bulunamadı")
	}

	idx, err := s.BuildIndex()
	if err != nil {
		return nil, err
	}

	leftVol, leftCount := idx.legStats(userID, models.PositionLeft)
	rightVol, rightCount := idx.legStats(userID, models.PositionRight)

	return &models.SubtreeStats{
		UserID:      userID,
		LeftVolume:  leftVol,
		RightVolume: rightVol,
		LeftCount:   leftCount,
		RightCount:  rightCount,
	}, nil
}

// RenderTree kullanıcıdan aşağıya maxDepth seviyeye kadar ağacı çizer
// Görünen tüm kullanıcılar tek sorguyla yüklenir
func (s *TreeService) RenderTree(rootID, maxDepth int) (*models.TreeNode, error) {
	if maxDepth <= 0 {
		maxDepth = 3
	}

	if _, err := s.userRepo.GetByID(rootID); err != nil {
		return nil, apperrors.NotFound("kullanıcı bulunamadı")
	}

	idx, err := s.BuildIndex()
	if err != nil {
		return nil, err
	}

	// BFS ile görünür ID'leri topla
	visible := []int{rootID}
	frontier := []int{rootID}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []int
		for _, id := range frontier {
			for _, pos := range []string{models.PositionLeft, models.PositionRight} {
				if childID, ok := idx.Child(id, pos); ok {
					visible = append(visible, childID)
					next = append(next, childID)
				}
			}
		}
		frontier = next
	}

	users, err := s.userRepo.GetByIDs(visible)
	if err != nil {
		return nil, apperrors.Upstream("ağaç kullanıcıları yüklenemedi", err)
	}

	return s.buildNode(rootID, maxDepth, idx, users), nil
}

// buildNode tek bir render düğümünü ve (derinlik izin verdikçe) çocuklarını kurar
func (s *TreeService) buildNode(userID, depth int, idx *TreeIndex, users map[int]*models.User) *models.TreeNode {
	user, ok := users[userID]
	if !ok {
		return nil
	}

	leftVol, leftCount := idx.legStats(userID, models.PositionLeft)
	rightVol, rightCount := idx.legStats(userID, models.PositionRight)

	node := &models.TreeNode{
		UserID:      userID,
		Name:        user.FullName(),
		Email:       user.Email,
		Code:        user.ReferralCode,
		Balances:    user.Balances(),
		LeftVolume:  leftVol,
		RightVolume: rightVol,
		LeftCount:   leftCount,
		RightCount:  rightCount,
	}

	if depth > 0 {
		if childID, ok := idx.Child(userID, models.PositionLeft); ok {
			node.Left = s.buildNode(childID, depth-1, idx, users)
		}
		if childID, ok := idx.Child(userID, models.PositionRight); ok {
			node.Right = s.buildNode(childID, depth-1, idx, users)
		}
	}

	return node
}

// GetUpline kullanıcının ata zincirini kökten değil kendisinden yukarı döner
func (s *TreeService) GetUpline(userID int) ([]*models.Referral, error) {
	var chain []*models.Referral

	cursor := userID
	for {
		edge, err := s.referralRepo.GetByChildID(cursor)
		if err != nil {
			return nil, apperrors.Upstream("ata zinciri okunamadı", err)
		}
		if edge == nil {
			break
		}
		chain = append(chain, edge)
		cursor = edge.ParentID
	}

	return chain, nil
}
