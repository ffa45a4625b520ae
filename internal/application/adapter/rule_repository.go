package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/domain/valueobject"
)

// RuleRepository loads the matching rule configuration of a company.
type RuleRepository interface {
	// GetRuleSet retrieves the active rules configured for the company. An
	// empty configuration yields the built-in defaults.
	GetRuleSet(ctx context.Context, companyID uuid.UUID) (valueobject.RuleSet, error)

	// GetTransferKeywords retrieves the transfer keyword list configured for
	// the company, or nil when the defaults apply.
	GetTransferKeywords(ctx context.Context, companyID uuid.UUID) ([]string, error)
}
