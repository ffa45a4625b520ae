package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/domain/entity"
)

// BankTransactionModel represents the bank_transactions table in the database.
type BankTransactionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	StatementID uuid.UUID `gorm:"type:uuid;not null;index"`

	FitID      string `gorm:"type:varchar(255);index:idx_bank_txn_fitid"`
	UnstableID bool   `gorm:"not null;default:false"`

	PostedAt        time.Time       `gorm:"type:date;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type            string          `gorm:"type:varchar(10);not null"`
	Payee           string          `gorm:"type:varchar(255)"`
	Memo            string          `gorm:"type:varchar(255)"`
	CheckNumber     string          `gorm:"type:varchar(40)"`
	ReferenceNumber string          `gorm:"type:varchar(40)"`

	Status         string           `gorm:"type:varchar(20);not null;index"`
	MatchedAmount  *decimal.Decimal `gorm:"type:decimal(15,2)"`
	MatchCount     int              `gorm:"not null;default:0"`
	PrimaryMatchID *uuid.UUID       `gorm:"type:uuid"`
	Confidence     *string          `gorm:"type:varchar(10)"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Statement *BankStatementModel `gorm:"foreignKey:StatementID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the BankTransactionModel.
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// ToEntity converts a BankTransactionModel to a domain BankTransaction entity.
func (m *BankTransactionModel) ToEntity() *entity.BankTransaction {
	var confidence *entity.Confidence
	if m.Confidence != nil {
		c := entity.Confidence(*m.Confidence)
		confidence = &c
	}
	return &entity.BankTransaction{
		ID:              m.ID,
		AccountID:       m.AccountID,
		CompanyID:       m.CompanyID,
		StatementID:     m.StatementID,
		FitID:           m.FitID,
		UnstableID:      m.UnstableID,
		PostedAt:        m.PostedAt,
		Amount:          m.Amount,
		Type:            entity.EntryType(m.Type),
		Payee:           m.Payee,
		Memo:            m.Memo,
		CheckNumber:     m.CheckNumber,
		ReferenceNumber: m.ReferenceNumber,
		Status:          entity.ReconciliationStatus(m.Status),
		MatchedAmount:   m.MatchedAmount,
		MatchCount:      m.MatchCount,
		PrimaryMatchID:  m.PrimaryMatchID,
		Confidence:      confidence,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// BankTransactionModelFromEntity converts a domain BankTransaction entity to a BankTransactionModel.
func BankTransactionModelFromEntity(e *entity.BankTransaction) *BankTransactionModel {
	var confidence *string
	if e.Confidence != nil {
		c := string(*e.Confidence)
		confidence = &c
	}
	return &BankTransactionModel{
		ID:              e.ID,
		AccountID:       e.AccountID,
		CompanyID:       e.CompanyID,
		StatementID:     e.StatementID,
		FitID:           e.FitID,
		UnstableID:      e.UnstableID,
		PostedAt:        e.PostedAt,
		Amount:          e.Amount,
		Type:            string(e.Type),
		Payee:           e.Payee,
		Memo:            e.Memo,
		CheckNumber:     e.CheckNumber,
		ReferenceNumber: e.ReferenceNumber,
		Status:          string(e.Status),
		MatchedAmount:   e.MatchedAmount,
		MatchCount:      e.MatchCount,
		PrimaryMatchID:  e.PrimaryMatchID,
		Confidence:      confidence,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
