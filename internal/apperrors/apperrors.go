package apperrors

import (
	"errors"
	"net/http"
)

// Kind hata sınıfını temsil eder
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindStateConflict     Kind = "state_conflict"
	KindCycleDetected     Kind = "cycle_detected"
	KindUpstream          Kind = "upstream_unavailable"
)

// AppError sınıflandırılmış uygulama hatası
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error AppError'un error interface implementation'ı
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap sarılan hatayı döner
func (e *AppError) Unwrap() error {
	return e.Err
}

// Status hata sınıfına karşılık gelen HTTP status kodunu döner
func (e *AppError) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput, KindInsufficientFunds:
		return http.StatusBadRequest
	case KindStateConflict, KindCycleDetected:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// NotFound eksik kayıt hatası oluşturur
func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// InvalidInput geçersiz girdi hatası oluşturur
func InvalidInput(message string) *AppError {
	return &AppError{Kind: KindInvalidInput, Message: message}
}

// InsufficientFunds yetersiz bakiye hatası oluşturur
func InsufficientFunds(message string) *AppError {
	return &AppError{Kind: KindInsufficientFunds, Message: message}
}

// StateConflict durum çakışması hatası oluşturur
func StateConflict(message string) *AppError {
	return &AppError{Kind: KindStateConflict, Message: message}
}

// CycleDetected ağaçta döngü tespiti hatası oluşturur
func CycleDetected(message string) *AppError {
	return &AppError{Kind: KindCycleDetected, Message: message}
}

// Upstream storage/ledger kaynaklı hata oluşturur
func Upstream(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

// IsKind hatanın belirtilen sınıfta olup olmadığını kontrol eder
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// StatusOf herhangi bir hata için HTTP status kodunu döner
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status()
	}
	return http.StatusInternalServerError
}
