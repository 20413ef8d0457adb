package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/apperrors"
	"github.com/finalxcard/invest-api/internal/interfaces"
	"github.com/finalxcard/invest-api/internal/models"
)

// PackageHandler paket kataloğu HTTP isteklerini yönetir
type PackageHandler struct {
	catalog interfaces.CatalogServiceInterface
}

// NewPackageHandler yeni handler oluşturur
func NewPackageHandler(catalog interfaces.CatalogServiceInterface) *PackageHandler {
	return &PackageHandler{catalog: catalog}
}

// List aktif paketleri alt sınıra göre sıralı döner (public)
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	packages, err := h.catalog.ListActive()
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"packages": packages,
		"count":    len(packages),
	}, "Paketler getirildi")
}

// Create yeni paket tanımlar (admin)
func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePackageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pkg, err := h.catalog.CreatePackage(&req)
	if err != nil {
		log.Warn().Err(err).Str("name", req.Name).Msg("Paket oluşturulamadı")
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, pkg, "Paket oluşturuldu")
}

// Update paket bilgilerini günceller (admin)
func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req models.UpdatePackageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pkg, err := h.catalog.UpdatePackage(id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, pkg, "Paket güncellendi")
}

// Delete paketi siler veya pasife alır (admin)
func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.catalog.DeletePackage(id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "Paket silindi")
}

// pathID URL'deki {id} parametresini parse eder
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("geçersiz ID")
	}
	return id, nil
}
