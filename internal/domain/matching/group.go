package matching

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/domain/entity"
	"github.com/concilia/backend/internal/domain/valueobject"
)

// MaxGroupSize bounds the subset search for many-to-one matches.
const MaxGroupSize = 5

// FindGroup looks for a subset of ledger entries whose amounts sum to the
// bank transaction amount within the rule tolerance. Entries must share the
// transaction's sign and sit inside the date window. The first entry of the
// returned slice is the designated primary. Returns nil when no subset works.
func (e *Engine) FindGroup(txn *entity.BankTransaction, entries []*entity.LedgerEntry) []*entity.LedgerEntry {
	rule, ok := e.amountDateRule()
	if !ok {
		return nil
	}

	debit := txn.Amount.IsNegative()
	var pool []*entity.LedgerEntry
	for _, le := range entries {
		if le.Amount.IsNegative() != debit {
			continue
		}
		if daysBetween(txn.PostedAt, le.Date) > rule.ToleranceDays {
			continue
		}
		if le.AbsAmount().GreaterThan(txn.AbsAmount()) {
			continue
		}
		pool = append(pool, le)
	}
	if len(pool) < 2 {
		return nil
	}

	// Deterministic tie-breaks: earlier date first, then smaller id.
	sort.Slice(pool, func(i, j int) bool {
		if !pool[i].Date.Equal(pool[j].Date) {
			return pool[i].Date.Before(pool[j].Date)
		}
		return pool[i].ID.String() < pool[j].ID.String()
	})

	target := txn.AbsAmount()
	var group []*entity.LedgerEntry
	if e.searchSubset(pool, 0, target, decimal.Zero, rule, &group) && len(group) >= 2 {
		return group
	}
	return nil
}

// searchSubset is a bounded depth-first search for the first subset summing
// to the target within tolerance.
func (e *Engine) searchSubset(
	pool []*entity.LedgerEntry,
	start int,
	target decimal.Decimal,
	sum decimal.Decimal,
	rule valueobject.MatchingRule,
	group *[]*entity.LedgerEntry,
) bool {
	if len(*group) >= 2 && withinTolerance(sum, target, rule.TolerancePercent) {
		return true
	}
	if len(*group) == MaxGroupSize {
		return false
	}
	for i := start; i < len(pool); i++ {
		next := sum.Add(pool[i].AbsAmount())
		if exceedsTolerance(next, target, rule.TolerancePercent) {
			continue
		}
		*group = append(*group, pool[i])
		if e.searchSubset(pool, i+1, target, next, rule, group) {
			return true
		}
		*group = (*group)[:len(*group)-1]
	}
	return false
}

func (e *Engine) amountDateRule() (valueobject.MatchingRule, bool) {
	for _, r := range e.rules.Rules {
		if r.Active && r.Type == valueobject.RuleTypeAmountDate {
			return r, true
		}
	}
	return valueobject.MatchingRule{}, false
}

func withinTolerance(sum, target, tolerance decimal.Decimal) bool {
	if target.IsZero() {
		return sum.IsZero()
	}
	relDiff := sum.Sub(target).Abs().Div(target)
	return relDiff.LessThanOrEqual(tolerance)
}

// exceedsTolerance reports whether the running sum is already past the target
// by more than the tolerance allows, pruning the search.
func exceedsTolerance(sum, target, tolerance decimal.Decimal) bool {
	if sum.LessThanOrEqual(target) {
		return false
	}
	if target.IsZero() {
		return true
	}
	return sum.Sub(target).Div(target).GreaterThan(tolerance)
}
