package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/domain/valueobject"
)

// MatchingRuleModel represents the matching_rules table in the database.
type MatchingRuleModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name string `gorm:"type:varchar(100);not null"`
	Type string `gorm:"type:varchar(20);not null"`

	TolerancePercent decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0"`
	ToleranceDays    int             `gorm:"not null;default:0"`
	MinSimilarity    decimal.Decimal `gorm:"type:decimal(4,2);not null;default:0"`

	Weight int  `gorm:"not null"`
	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the MatchingRuleModel.
func (MatchingRuleModel) TableName() string {
	return "matching_rules"
}

// ToValueObject converts a MatchingRuleModel to a domain MatchingRule.
func (m *MatchingRuleModel) ToValueObject() valueobject.MatchingRule {
	return valueobject.MatchingRule{
		ID:               m.ID,
		Name:             m.Name,
		Type:             valueobject.RuleType(m.Type),
		TolerancePercent: m.TolerancePercent,
		ToleranceDays:    m.ToleranceDays,
		MinSimilarity:    m.MinSimilarity,
		Weight:           m.Weight,
		Active:           m.Active,
	}
}

// ReconciliationSettingsModel represents the reconciliation_settings table,
// one row per company.
type ReconciliationSettingsModel struct {
	CompanyID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// TransferKeywords overrides the built-in transfer keyword list when set.
	TransferKeywords pq.StringArray `gorm:"type:text[]"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the ReconciliationSettingsModel.
func (ReconciliationSettingsModel) TableName() string {
	return "reconciliation_settings"
}
