package models

import "time"

// Package yatırım paketini (tier) temsil eder
// min/max deposit aralıkları katalogda bitişik ve çakışmasız olmalı
type Package struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	MinDeposit  string    `json:"min_deposit" db:"min_deposit"`
	MaxDeposit  string    `json:"max_deposit" db:"max_deposit"`
	Rate        float64   `json:"rate" db:"rate"`
	Description string    `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreatePackageRequest paket oluşturma isteği
type CreatePackageRequest struct {
	Name        string  `json:"name"`
	MinDeposit  string  `json:"min_deposit"`
	MaxDeposit  string  `json:"max_deposit"`
	Rate        float64 `json:"rate"`
	Description string  `json:"description"`
}

// UpdatePackageRequest paket güncelleme isteği
type UpdatePackageRequest struct {
	Name        *string  `json:"name"`
	MinDeposit  *string  `json:"min_deposit"`
	MaxDeposit  *string  `json:"max_deposit"`
	Rate        *float64 `json:"rate"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"is_active"`
}
