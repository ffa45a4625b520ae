package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/domain/entity"
)

// TransactionMatchModel represents the transaction_matches table in the database.
type TransactionMatchModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	BankTransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	LedgerEntryID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID         uuid.UUID `gorm:"type:uuid;not null;index"`

	Type       string `gorm:"type:varchar(10);not null"`
	Status     string `gorm:"type:varchar(10);not null;index"`
	Confidence string `gorm:"type:varchar(10);not null"`

	IsPrimary  bool `gorm:"not null;default:false"`
	MatchOrder int  `gorm:"not null;default:1"`
	GroupSize  int  `gorm:"not null;default:1"`

	Score  decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	Reason string          `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	BankTransaction *BankTransactionModel `gorm:"foreignKey:BankTransactionID;references:ID;constraint:OnDelete:CASCADE"`
	LedgerEntry     *LedgerEntryModel     `gorm:"foreignKey:LedgerEntryID;references:ID"`
}

// TableName returns the table name for the TransactionMatchModel.
func (TransactionMatchModel) TableName() string {
	return "transaction_matches"
}

// ToEntity converts a TransactionMatchModel to a domain TransactionMatch entity.
func (m *TransactionMatchModel) ToEntity() *entity.TransactionMatch {
	return &entity.TransactionMatch{
		ID:                m.ID,
		BankTransactionID: m.BankTransactionID,
		LedgerEntryID:     m.LedgerEntryID,
		CompanyID:         m.CompanyID,
		Type:              entity.MatchType(m.Type),
		Status:            entity.MatchStatus(m.Status),
		Confidence:        entity.Confidence(m.Confidence),
		IsPrimary:         m.IsPrimary,
		MatchOrder:        m.MatchOrder,
		GroupSize:         m.GroupSize,
		Score:             m.Score,
		Reason:            m.Reason,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// TransactionMatchModelFromEntity converts a domain TransactionMatch entity to a TransactionMatchModel.
func TransactionMatchModelFromEntity(e *entity.TransactionMatch) *TransactionMatchModel {
	return &TransactionMatchModel{
		ID:                e.ID,
		BankTransactionID: e.BankTransactionID,
		LedgerEntryID:     e.LedgerEntryID,
		CompanyID:         e.CompanyID,
		Type:              string(e.Type),
		Status:            string(e.Status),
		Confidence:        string(e.Confidence),
		IsPrimary:         e.IsPrimary,
		MatchOrder:        e.MatchOrder,
		GroupSize:         e.GroupSize,
		Score:             e.Score,
		Reason:            e.Reason,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
