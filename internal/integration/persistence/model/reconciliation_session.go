package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/domain/entity"
)

// ReconciliationSessionModel represents the reconciliation_sessions table in the database.
type ReconciliationSessionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	StatementID uuid.UUID `gorm:"type:uuid;not null;index"`

	PeriodStart time.Time `gorm:"type:date;not null"`
	PeriodEnd   time.Time `gorm:"type:date;not null"`
	Status      string    `gorm:"type:varchar(10);not null"`

	TotalTransactions int `gorm:"not null;default:0"`
	Matched           int `gorm:"not null;default:0"`
	Suggested         int `gorm:"not null;default:0"`
	Transfers         int `gorm:"not null;default:0"`
	Pending           int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the ReconciliationSessionModel.
func (ReconciliationSessionModel) TableName() string {
	return "reconciliation_sessions"
}

// ToEntity converts a ReconciliationSessionModel to a domain ReconciliationSession entity.
func (m *ReconciliationSessionModel) ToEntity() *entity.ReconciliationSession {
	return &entity.ReconciliationSession{
		ID:                m.ID,
		AccountID:         m.AccountID,
		CompanyID:         m.CompanyID,
		StatementID:       m.StatementID,
		PeriodStart:       m.PeriodStart,
		PeriodEnd:         m.PeriodEnd,
		Status:            entity.SessionStatus(m.Status),
		TotalTransactions: m.TotalTransactions,
		Matched:           m.Matched,
		Suggested:         m.Suggested,
		Transfers:         m.Transfers,
		Pending:           m.Pending,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// ReconciliationSessionModelFromEntity converts a domain ReconciliationSession entity to a ReconciliationSessionModel.
func ReconciliationSessionModelFromEntity(e *entity.ReconciliationSession) *ReconciliationSessionModel {
	return &ReconciliationSessionModel{
		ID:                e.ID,
		AccountID:         e.AccountID,
		CompanyID:         e.CompanyID,
		StatementID:       e.StatementID,
		PeriodStart:       e.PeriodStart,
		PeriodEnd:         e.PeriodEnd,
		Status:            string(e.Status),
		TotalTransactions: e.TotalTransactions,
		Matched:           e.Matched,
		Suggested:         e.Suggested,
		Transfers:         e.Transfers,
		Pending:           e.Pending,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
