// Package matching implements the reconciliation rule engine: weighted
// scoring of bank-transaction / ledger-entry pairs, transfer classification
// and many-to-one group candidate selection.
package matching

import (
	"math"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/domain/entity"
	"github.com/concilia/backend/internal/domain/valueobject"
)

// Engine scores bank transactions against ledger entries using a configured
// rule set. Scoring is pure and safe for concurrent use.
type Engine struct {
	rules valueobject.RuleSet
}

// NewEngine creates a rule engine over the given rule set. Callers decide the
// fallback explicitly via valueobject.RuleSetFrom; the engine never reaches
// for implicit defaults.
func NewEngine(rules valueobject.RuleSet) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the rule set the engine was built with.
func (e *Engine) Rules() valueobject.RuleSet {
	return e.rules
}

// Score evaluates one pair. Each active rule contributes weight * ruleScore
// to a running total, scaled to 0-100 by the sum of active weights.
func (e *Engine) Score(txn *entity.BankTransaction, le *entity.LedgerEntry) valueobject.MatchEvaluation {
	eval := valueobject.MatchEvaluation{
		ExactAmount: txn.AbsAmount().Equal(le.AbsAmount()),
		ExactDate:   sameDay(txn.PostedAt, le.Date),
	}

	totalWeight := e.rules.ActiveWeight()
	if totalWeight == 0 {
		return eval
	}

	weighted := 0.0
	for _, rule := range e.rules.Rules {
		if !rule.Active {
			continue
		}

		var s float64
		switch rule.Type {
		case valueobject.RuleTypeAmountDate:
			s = amountDateScore(txn, le, rule)
		case valueobject.RuleTypeDescription:
			s = descriptionScore(txn.Description(), le.Description, rule)
		case valueobject.RuleTypeReference:
			s = referenceScore(txn, le)
		}

		weighted += float64(rule.Weight) * s
		eval.Breakdown = append(eval.Breakdown, valueobject.RuleScore{
			RuleID:   rule.ID.String(),
			RuleName: rule.Name,
			Type:     rule.Type,
			Score:    s,
			Weight:   rule.Weight,
		})
	}

	eval.Score = weighted / float64(totalWeight) * 100
	return eval
}

// amountDateScore returns 1.0 only when both the amount and the date fall
// within the rule tolerances. Outside the tolerances it degrades linearly
// with distance, reaching zero at twice the tolerance.
func amountDateScore(txn *entity.BankTransaction, le *entity.LedgerEntry, rule valueobject.MatchingRule) float64 {
	amountPart := amountCloseness(txn.AbsAmount(), le.AbsAmount(), rule.TolerancePercent)
	datePart := dateCloseness(daysBetween(txn.PostedAt, le.Date), rule.ToleranceDays)

	if amountPart >= 1 && datePart >= 1 {
		return 1
	}
	// Partial credit, dominated by the weaker dimension so a perfect amount
	// cannot carry a far-off date.
	return 0.5 * (amountPart*datePart + math.Min(amountPart, datePart))
}

func amountCloseness(a, b, tolerance decimal.Decimal) float64 {
	if a.IsZero() && b.IsZero() {
		return 1
	}
	max := decimal.Max(a, b)
	if max.IsZero() {
		return 0
	}
	relDiff, _ := a.Sub(b).Abs().Div(max).Float64()
	tol, _ := tolerance.Float64()
	if tol <= 0 {
		if relDiff == 0 {
			return 1
		}
		return 0
	}
	if relDiff <= tol {
		return 1
	}
	return clamp01(2 - relDiff/tol)
}

func dateCloseness(days, toleranceDays int) float64 {
	if toleranceDays <= 0 {
		if days == 0 {
			return 1
		}
		return 0
	}
	if days <= toleranceDays {
		return 1
	}
	return clamp01(2 - float64(days)/float64(toleranceDays))
}

// descriptionScore is the normalized levenshtein similarity between the two
// texts, zeroed below the rule's minimum similarity.
func descriptionScore(a, b string, rule valueobject.MatchingRule) float64 {
	sim := Similarity(a, b)
	min, _ := rule.MinSimilarity.Float64()
	if sim < min {
		return 0
	}
	return sim
}

// Similarity returns the levenshtein similarity fraction between the
// case/accent-normalized texts.
func Similarity(a, b string) float64 {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return clamp01(1 - float64(dist)/float64(longest))
}

// referenceScore is 1 on exact identity between any bank reference (FITID,
// check or reference number) and the ledger document number.
func referenceScore(txn *entity.BankTransaction, le *entity.LedgerEntry) float64 {
	doc := NormalizeText(le.DocumentNumber)
	if doc == "" {
		return 0
	}
	for _, ref := range []string{txn.FitID, txn.CheckNumber, txn.ReferenceNumber} {
		if ref != "" && NormalizeText(ref) == doc {
			return 1
		}
	}
	return 0
}

func daysBetween(a, b time.Time) int {
	d := truncateDay(a).Sub(truncateDay(b))
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
