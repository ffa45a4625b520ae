// Package valueobject contains domain value objects for the reconciliation engine.
package valueobject

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleType identifies the scoring strategy of a matching rule.
type RuleType string

const (
	// RuleTypeAmountDate scores amount proximity within a percentage tolerance
	// combined with date proximity within a day window.
	RuleTypeAmountDate RuleType = "valor_data"
	// RuleTypeDescription scores normalized text similarity between the bank
	// transaction memo/payee and the ledger entry description.
	RuleTypeDescription RuleType = "descricao"
	// RuleTypeReference scores exact identity between bank reference numbers
	// (FITID, check, reference) and the ledger document number.
	RuleTypeReference RuleType = "documento"
)

// MatchingRule is one configurable, weighted matching criterion.
type MatchingRule struct {
	ID   uuid.UUID
	Name string
	Type RuleType

	// TolerancePercent applies to RuleTypeAmountDate: |a-b|/max(|a|,|b|) must
	// stay at or below it for a full amount match. Stored as a fraction (0.02 = 2%).
	TolerancePercent decimal.Decimal
	// ToleranceDays applies to RuleTypeAmountDate: the day window for a full
	// date match.
	ToleranceDays int
	// MinSimilarity applies to RuleTypeDescription: similarity fractions below
	// it score zero. Stored as a fraction (0.70 = 70%).
	MinSimilarity decimal.Decimal

	Weight int
	Active bool
}

// RuleSource records where a rule set came from, so "no rules configured" is
// an explicit state instead of an implicit module-level fallback.
type RuleSource string

const (
	RuleSourceDefault RuleSource = "default"
	RuleSourceCompany RuleSource = "company"
)

// RuleSet is the effective rule configuration handed to the engine.
type RuleSet struct {
	Source RuleSource
	Rules  []MatchingRule
}

// ActiveWeight returns the sum of weights over active rules.
func (rs RuleSet) ActiveWeight() int {
	total := 0
	for _, r := range rs.Rules {
		if r.Active {
			total += r.Weight
		}
	}
	return total
}

// DefaultRuleSet returns the built-in rule configuration used when a company
// has none configured: 2% amount tolerance over a 3-day window, 70% minimum
// description similarity, and exact reference identity.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Source: RuleSourceDefault,
		Rules: []MatchingRule{
			{
				ID:               uuid.New(),
				Name:             "valor e data",
				Type:             RuleTypeAmountDate,
				TolerancePercent: decimal.NewFromFloat(0.02),
				ToleranceDays:    3,
				Weight:           60,
				Active:           true,
			},
			{
				ID:            uuid.New(),
				Name:          "descrição",
				Type:          RuleTypeDescription,
				MinSimilarity: decimal.NewFromFloat(0.70),
				Weight:        25,
				Active:        true,
			},
			{
				ID:     uuid.New(),
				Name:   "documento",
				Type:   RuleTypeReference,
				Weight: 15,
				Active: true,
			},
		},
	}
}

// RuleSetFrom wraps company-configured rules, falling back to the defaults
// when the slice is empty.
func RuleSetFrom(rules []MatchingRule) RuleSet {
	if len(rules) == 0 {
		return DefaultRuleSet()
	}
	return RuleSet{Source: RuleSourceCompany, Rules: rules}
}
