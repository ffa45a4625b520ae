package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/valueobject"
	"github.com/concilia/backend/internal/integration/persistence/model"
)

// ruleRepository implements the adapter.RuleRepository interface.
type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new matching rule repository instance.
func NewRuleRepository(db *gorm.DB) adapter.RuleRepository {
	return &ruleRepository{db: db}
}

// GetRuleSet retrieves the active rules configured for the company. An empty
// configuration yields the built-in defaults.
func (r *ruleRepository) GetRuleSet(ctx context.Context, companyID uuid.UUID) (valueobject.RuleSet, error) {
	var models []model.MatchingRuleModel
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND active = ?", companyID, true).
		Order("weight DESC").
		Find(&models).Error
	if err != nil {
		return valueobject.RuleSet{}, err
	}

	rules := make([]valueobject.MatchingRule, len(models))
	for i := range models {
		rules[i] = models[i].ToValueObject()
	}
	return valueobject.RuleSetFrom(rules), nil
}

// GetTransferKeywords retrieves the transfer keyword list configured for the
// company, or nil when the defaults apply.
func (r *ruleRepository) GetTransferKeywords(ctx context.Context, companyID uuid.UUID) ([]string, error) {
	var settings model.ReconciliationSettingsModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return settings.TransferKeywords, nil
}
