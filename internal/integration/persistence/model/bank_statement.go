// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/domain/entity"
)

// BankStatementModel represents the bank_statements table in the database.
type BankStatementModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_statement_account_hash"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null"`

	FileName      string `gorm:"type:varchar(255);not null"`
	BankCode      string `gorm:"type:varchar(20)"`
	AccountNumber string `gorm:"type:varchar(40)"`

	PeriodStart    time.Time       `gorm:"type:date;not null"`
	PeriodEnd      time.Time       `gorm:"type:date;not null"`
	ClosingBalance decimal.Decimal `gorm:"type:decimal(15,2)"`
	BalanceDate    time.Time       `gorm:"type:date"`

	ContentHash      string `gorm:"type:char(64);not null;uniqueIndex:idx_statement_account_hash"`
	TransactionCount int    `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the BankStatementModel.
func (BankStatementModel) TableName() string {
	return "bank_statements"
}

// ToEntity converts a BankStatementModel to a domain BankStatement entity.
func (m *BankStatementModel) ToEntity() *entity.BankStatement {
	return &entity.BankStatement{
		ID:               m.ID,
		AccountID:        m.AccountID,
		CompanyID:        m.CompanyID,
		UploadedBy:       m.UploadedBy,
		FileName:         m.FileName,
		BankCode:         m.BankCode,
		AccountNumber:    m.AccountNumber,
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		ClosingBalance:   m.ClosingBalance,
		BalanceDate:      m.BalanceDate,
		ContentHash:      m.ContentHash,
		TransactionCount: m.TransactionCount,
		CreatedAt:        m.CreatedAt,
	}
}

// BankStatementModelFromEntity converts a domain BankStatement entity to a BankStatementModel.
func BankStatementModelFromEntity(e *entity.BankStatement) *BankStatementModel {
	return &BankStatementModel{
		ID:               e.ID,
		AccountID:        e.AccountID,
		CompanyID:        e.CompanyID,
		UploadedBy:       e.UploadedBy,
		FileName:         e.FileName,
		BankCode:         e.BankCode,
		AccountNumber:    e.AccountNumber,
		PeriodStart:      e.PeriodStart,
		PeriodEnd:        e.PeriodEnd,
		ClosingBalance:   e.ClosingBalance,
		BalanceDate:      e.BalanceDate,
		ContentHash:      e.ContentHash,
		TransactionCount: e.TransactionCount,
		CreatedAt:        e.CreatedAt,
	}
}
