package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/domain/entity"
)

// LedgerEntryModel represents the ledger_entries table in the database.
type LedgerEntryModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`

	Date           time.Time       `gorm:"type:date;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type           string          `gorm:"type:varchar(20);not null"`
	Description    string          `gorm:"type:varchar(255);not null"`
	DocumentNumber string          `gorm:"type:varchar(40)"`

	Status            string     `gorm:"type:varchar(20);not null;index"`
	BankTransactionID *uuid.UUID `gorm:"type:uuid;index"`
	InMatchGroup      bool       `gorm:"not null;default:false"`
	GroupSize         int        `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the LedgerEntryModel.
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToEntity converts a LedgerEntryModel to a domain LedgerEntry entity.
func (m *LedgerEntryModel) ToEntity() *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:                m.ID,
		CompanyID:         m.CompanyID,
		Date:              m.Date,
		Amount:            m.Amount,
		Type:              entity.LedgerEntryType(m.Type),
		Description:       m.Description,
		DocumentNumber:    m.DocumentNumber,
		Status:            entity.LedgerStatus(m.Status),
		BankTransactionID: m.BankTransactionID,
		InMatchGroup:      m.InMatchGroup,
		GroupSize:         m.GroupSize,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// LedgerEntryModelFromEntity converts a domain LedgerEntry entity to a LedgerEntryModel.
func LedgerEntryModelFromEntity(e *entity.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:                e.ID,
		CompanyID:         e.CompanyID,
		Date:              e.Date,
		Amount:            e.Amount,
		Type:              string(e.Type),
		Description:       e.Description,
		DocumentNumber:    e.DocumentNumber,
		Status:            string(e.Status),
		BankTransactionID: e.BankTransactionID,
		InMatchGroup:      e.InMatchGroup,
		GroupSize:         e.GroupSize,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
