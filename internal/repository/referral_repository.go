package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/models"
)

// Unique constraint ihlallerini ayırt etmek için constraint adları
// migration'daki tanımlarla birebir aynı olmalı
const (
	constraintChildUnique    = "referrals_child_id_key"
	constraintPositionUnique = "referrals_parent_position_key"
)

// Sentinel hatalar: service katmanı bunları taksonomiye çevirir
var (
	ErrChildAlreadyPlaced = fmt.Errorf("kullanıcı zaten ağaca yerleştirilmiş")
	ErrPositionTaken      = fmt.Errorf("bu pozisyon dolu")
)

// ReferralRepository binary ağaç kenarı database işlemleri
type ReferralRepository struct {
	q db.Querier
}

// NewReferralRepository yeni repository oluşturur
func NewReferralRepository(database *sql.DB) *ReferralRepository {
	return &ReferralRepository{q: database}
}

// WithTx transaction'a bağlı repository kopyası döner
func (r *ReferralRepository) WithTx(tx *sql.Tx) *ReferralRepository {
	return &ReferralRepository{q: tx}
}

// referralColumns referrals tablosundan okunan kolonlar
const referralColumns = `id, parent_id, child_id, position, created_at`

// Create yeni kenar ekler
// Tekillik kontrolleri uygulama kodunda değil DB constraint'lerinde yapılır;
// iki eşzamanlı yerleştirmeden biri burada unique ihlaliyle reddedilir
func (r *ReferralRepository) Create(parentID, childID int, position string) (*models.Referral, error) {
	query := `
		INSERT INTO referrals (parent_id, child_id, position)
		VALUES ($1, $2, $3)
		RETURNING ` + referralColumns

	var edge models.Referral
	err := r.q.QueryRow(query, parentID, childID, position).Scan(
		&edge.ID,
		&edge.ParentID,
		&edge.ChildID,
		&edge.Position,
		&edge.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case constraintChildUnique:
				return nil, ErrChildAlreadyPlaced
			case constraintPositionUnique:
				return nil, ErrPositionTaken
			}
		}
		return nil, fmt.Errorf("kenar eklenemedi: %w", err)
	}

	return &edge, nil
}

// GetByChildID kullanıcının uplink kenarını getirir, yoksa nil döner
func (r *ReferralRepository) GetByChildID(childID int) (*models.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE child_id = $1`

	var edge models.Referral
	err := r.q.QueryRow(query, childID).Scan(
		&edge.ID,
		&edge.ParentID,
		&edge.ChildID,
		&edge.Position,
		&edge.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("uplink sorgusu hatası: %w", err)
	}

	return &edge, nil
}

// GetAllEdges tüm kenar kümesini tek sorguda getirir
// Ağaç yürüyüşleri (hacim, sayım, render) bu kümeyi bellekte gezer
func (r *ReferralRepository) GetAllEdges() ([]*models.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals`

	rows, err := r.q.Query(query)
	if err != nil {
		return nil, fmt.Errorf("kenar kümesi sorgusu hatası: %w", err)
	}
	defer rows.Close()

	var edges []*models.Referral
	for rows.Next() {
		var edge models.Referral
		err := rows.Scan(
			&edge.ID,
			&edge.ParentID,
			&edge.ChildID,
			&edge.Position,
			&edge.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("kenar scan hatası: %w", err)
		}
		edges = append(edges, &edge)
	}

	return edges, rows.Err()
}
