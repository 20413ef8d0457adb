package services

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/apperrors"
	"github.com/finalxcard/invest-api/internal/models"
	"github.com/finalxcard/invest-api/internal/repository"
)

// CatalogService paket kataloğu ve tier seçim mantığı
// min/max deposit alanları serbest metin geldiği için ("$1,000" gibi)
// tüm karşılaştırmalar normalize edilmiş sayılar üzerinden yapılır
type CatalogService struct {
	packageRepo *repository.PackageRepository
}

// NewCatalogService yeni service oluşturur
func NewCatalogService(packageRepo *repository.PackageRepository) *CatalogService {
	return &CatalogService{packageRepo: packageRepo}
}

// toNumeric serbest metin tutarı çıplak sayı metnine indirger
// Para birimi sembolleri ve binlik ayraçlar atılır; birden fazla
// ondalık nokta varsa yalnızca ilki korunur
func toNumeric(raw string) string {
	var b strings.Builder
	seenDot := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if !seenDot {
				seenDot = true
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}

// parseMin alt sınırı parse eder; parse edilemeyen değer 0 kabul edilir
func parseMin(raw string) float64 {
	f, err := strconv.ParseFloat(toNumeric(raw), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseMax üst sınırı parse eder; parse edilemeyen değer sınırsız kabul edilir
func parseMax(raw string) float64 {
	f, err := strconv.ParseFloat(toNumeric(raw), 64)
	if err != nil {
		return math.Inf(1)
	}
	return f
}

// ListActive aktif paketleri alt sınıra göre artan sırada döner
func (s *CatalogService) ListActive() ([]*models.Package, error) {
	packages, err := s.packageRepo.GetAllActive()
	if err != nil {
		return nil, apperrors.Upstream("paketler yüklenemedi", err)
	}

	sort.SliceStable(packages, func(i, j int) bool {
		return parseMin(packages[i].MinDeposit) < parseMin(packages[j].MinDeposit)
	})

	return packages, nil
}

// FindTierForAmount verilen tutara karşılık gelen paketi seçer
// Tutar hiçbir aralığa düşmüyorsa ama en yüksek paketin alt sınırını
// aşıyorsa en yüksek paket uygulanır; en düşük alt sınırın altındaysa hata döner
func (s *CatalogService) FindTierForAmount(amount float64) (*models.Package, error) {
	packages, err := s.ListActive()
	if err != nil {
		return nil, err
	}
	if len(packages) == 0 {
		return nil, apperrors.NotFound("tanımlı paket yok")
	}

	for _, p := range packages {
		if amount >= parseMin(p.MinDeposit) && amount <= parseMax(p.MaxDeposit) {
			return p, nil
		}
	}

	// Aralıkların üstünde kalan tutar en yüksek pakete düşer
	highest := packages[len(packages)-1]
	if amount >= parseMin(highest.MinDeposit) {
		log.Debug().
			Float64("amount", amount).
			Str("package", highest.Name).
			Msg("Tutar aralıkların üstünde, en yüksek paket seçildi")
		return highest, nil
	}

	return nil, apperrors.InvalidInput("tutar hiçbir paketin aralığına girmiyor")
}

// GetAll tüm paketleri döner (admin)
func (s *CatalogService) GetAll() ([]*models.Package, error) {
	packages, err := s.packageRepo.GetAll()
	if err != nil {
		return nil, apperrors.Upstream("paketler yüklenemedi", err)
	}
	return packages, nil
}

// CreatePackage yeni paket tanımlar (admin)
func (s *CatalogService) CreatePackage(req *models.CreatePackageRequest) (*models.Package, error) {
	if req.Name == "" {
		return nil, apperrors.InvalidInput("paket adı boş olamaz")
	}
	if req.Rate <= 0 {
		return nil, apperrors.InvalidInput("paket oranı pozitif olmalı")
	}
	if min, max := parseMin(req.MinDeposit), parseMax(req.MaxDeposit); min > max {
		return nil, apperrors.InvalidInput("alt sınır üst sınırdan büyük olamaz")
	}

	pkg, err := s.packageRepo.Create(req)
	if err != nil {
		return nil, apperrors.Upstream("paket oluşturulamadı", err)
	}

	log.Info().Int("package_id", pkg.ID).Str("name", pkg.Name).Msg("📦 Yeni paket tanımlandı")
	return pkg, nil
}

// UpdatePackage paket bilgilerini günceller (admin)
func (s *CatalogService) UpdatePackage(id int, req *models.UpdatePackageRequest) (*models.Package, error) {
	if req.Rate != nil && *req.Rate <= 0 {
		return nil, apperrors.InvalidInput("paket oranı pozitif olmalı")
	}

	pkg, err := s.packageRepo.Update(id, req)
	if err != nil {
		return nil, apperrors.NotFound("paket bulunamadı")
	}

	return pkg, nil
}

// DeletePackage paketi siler; yatırım referansı varsa silmek yerine pasife çeker
func (s *CatalogService) DeletePackage(id int) error {
	count, err := s.packageRepo.CountReferencingInvestments(id)
	if err != nil {
		return apperrors.Upstream("paket referansları kontrol edilemedi", err)
	}

	if count > 0 {
		inactive := false
		if _, err := s.packageRepo.Update(id, &models.UpdatePackageRequest{IsActive: &inactive}); err != nil {
			return apperrors.Upstream("paket pasife alınamadı", err)
		}
		log.Warn().Int("package_id", id).Int("investments", count).Msg("Pakete bağlı yatırımlar var, silmek yerine pasife alındı")
		return nil
	}

	if err := s.packageRepo.Delete(id); err != nil {
		return apperrors.NotFound("paket bulunamadı")
	}

	return nil
}
