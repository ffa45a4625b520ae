package model

import (
	"time"

	"github.com/google/uuid"
)

// BankAccountModel represents the bank_accounts table in the database.
type BankAccountModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name          string `gorm:"type:varchar(100);not null"`
	BankCode      string `gorm:"type:varchar(20);not null"`
	AccountNumber string `gorm:"type:varchar(40);not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the BankAccountModel.
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}
