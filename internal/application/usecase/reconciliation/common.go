// Package reconciliation contains the bank reconciliation use cases: the
// matching orchestrator, match creation and review, unlinking, and the
// integrity validator.
package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/domain/valueobject"
)

// LockTTL bounds how long a reconciliation write may hold the per-transaction
// lock before it expires on its own.
const LockTTL = 10 * time.Second

// ensureIdentifierUnconfirmed blocks a reconciliation write when the bank
// identifier of the transaction is already confirmed on a sibling row of the
// same account. Transactions without a stable identifier pass.
func ensureIdentifierUnconfirmed(ctx context.Context, repo adapter.BankTransactionRepository, txn *entity.BankTransaction) error {
	if !txn.HasBankIdentifier() {
		return nil
	}
	siblings, err := repo.FindByFitID(ctx, txn.AccountID, txn.FitID)
	if err != nil {
		return err
	}
	var conflicting []string
	for _, s := range siblings {
		if s.ID != txn.ID && s.Status == entity.ReconciliationStatusConciliado {
			conflicting = append(conflicting, s.ID.String())
		}
	}
	if len(conflicting) > 0 {
		return domainerror.NewDuplicateIdentifierError(conflicting)
	}
	return nil
}

// scoreFraction converts a 0-100 engine score to the 0.00-1.00 fraction
// stored on match rows.
func scoreFraction(score float64) decimal.Decimal {
	return decimal.NewFromFloat(score / 100).Round(4)
}

// matchReason renders a short operator-facing explanation from the rule
// breakdown of an evaluation.
func matchReason(eval valueobject.MatchEvaluation) string {
	if eval.ExactAmount && eval.ExactDate {
		return "valor e data exatos"
	}
	best := ""
	bestScore := 0.0
	for _, rs := range eval.Breakdown {
		if rs.Score > bestScore {
			best = rs.RuleName
			bestScore = rs.Score
		}
	}
	if best == "" {
		return "sem criterio dominante"
	}
	return fmt.Sprintf("criterio dominante: %s (%.0f%%)", best, eval.Score)
}

// buildMatchGroup assembles the match rows linking one bank transaction to
// the given ledger entries. The first entry is the primary; every row shares
// the group size and carries a sequential match order.
func buildMatchGroup(
	txn *entity.BankTransaction,
	entries []*entity.LedgerEntry,
	matchType entity.MatchType,
	status entity.MatchStatus,
	confidence entity.Confidence,
	score decimal.Decimal,
	reason string,
) *adapter.MatchGroup {
	now := time.Now().UTC()
	matches := make([]*entity.TransactionMatch, 0, len(entries))
	matched := decimal.Zero
	for i, le := range entries {
		matches = append(matches, &entity.TransactionMatch{
			ID:                uuid.New(),
			BankTransactionID: txn.ID,
			LedgerEntryID:     le.ID,
			CompanyID:         txn.CompanyID,
			Type:              matchType,
			Status:            status,
			Confidence:        confidence,
			IsPrimary:         i == 0,
			MatchOrder:        i + 1,
			GroupSize:         len(entries),
			Score:             score,
			Reason:            reason,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
		matched = matched.Add(le.AbsAmount())
	}

	txn.Status = entity.BankStatusFor(status)
	txn.MatchedAmount = &matched
	txn.MatchCount = len(entries)
	txn.PrimaryMatchID = &matches[0].ID
	txn.Confidence = &confidence

	ledgerStatus := entity.LedgerStatusFor(status)
	for _, le := range entries {
		le.Status = ledgerStatus
		le.BankTransactionID = &txn.ID
		le.InMatchGroup = len(entries) > 1
		le.GroupSize = len(entries)
	}

	return &adapter.MatchGroup{
		BankTransaction: txn,
		Matches:         matches,
		LedgerEntries:   entries,
	}
}
