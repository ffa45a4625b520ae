package reconciliation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/domain/matching"
	"github.com/concilia/backend/internal/domain/valueobject"
)

// candidateWindowSlackDays widens the candidate window beyond the statement
// period so date tolerance at the period edges still finds entries.
const candidateWindowSlackDays = 7

// ProcessMatchingInput scopes one matching pass to the transactions of an
// imported statement.
type ProcessMatchingInput struct {
	CompanyID   uuid.UUID
	AccountID   uuid.UUID
	StatementID uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// ProcessMatchingOutput reports the per-status counts of the pass.
type ProcessMatchingOutput struct {
	SessionID uuid.UUID
	Summary   entity.MatchingSummary
}

// ProcessMatchingUseCase runs the rule engine over the bank transactions of a
// statement and persists the resulting suggestions and automatic matches.
type ProcessMatchingUseCase struct {
	bankTxnRepo adapter.BankTransactionRepository
	ledgerRepo  adapter.LedgerEntryRepository
	matchRepo   adapter.MatchRepository
	ruleRepo    adapter.RuleRepository
	sessionRepo adapter.SessionRepository
	lock        adapter.TransactionLock
	logger      *slog.Logger
}

// NewProcessMatchingUseCase creates a new ProcessMatchingUseCase instance.
func NewProcessMatchingUseCase(
	bankTxnRepo adapter.BankTransactionRepository,
	ledgerRepo adapter.LedgerEntryRepository,
	matchRepo adapter.MatchRepository,
	ruleRepo adapter.RuleRepository,
	sessionRepo adapter.SessionRepository,
	lock adapter.TransactionLock,
	logger *slog.Logger,
) *ProcessMatchingUseCase {
	return &ProcessMatchingUseCase{
		bankTxnRepo: bankTxnRepo,
		ledgerRepo:  ledgerRepo,
		matchRepo:   matchRepo,
		ruleRepo:    ruleRepo,
		sessionRepo: sessionRepo,
		lock:        lock,
		logger:      logger,
	}
}

// Execute runs the matching pass.
//
// Per transaction the outcome priority is: transfer classification, then an
// already confirmed or rejected state (both preserved), then the best scoring
// candidate or candidate group, then sem_match.
func (uc *ProcessMatchingUseCase) Execute(ctx context.Context, input ProcessMatchingInput) (*ProcessMatchingOutput, error) {
	ruleSet, err := uc.ruleRepo.GetRuleSet(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}
	keywords, err := uc.ruleRepo.GetTransferKeywords(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}
	engine := matching.NewEngine(ruleSet)
	classifier := matching.NewKeywordClassifier(keywords)

	transactions, err := uc.bankTxnRepo.ListByStatement(ctx, input.StatementID)
	if err != nil {
		return nil, err
	}

	candidates, err := uc.loadCandidates(ctx, input)
	if err != nil {
		return nil, err
	}

	claimed := make(map[uuid.UUID]bool)
	var summary entity.MatchingSummary

	for _, txn := range transactions {
		status, linked, err := uc.processOne(ctx, engine, classifier, txn, unclaimed(candidates, claimed))
		if err != nil {
			return nil, err
		}
		for _, le := range linked {
			claimed[le.ID] = true
		}
		summary.Add(status)
	}

	session, err := uc.refreshSession(ctx, input, summary)
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "matching pass finished",
		slog.String("statement_id", input.StatementID.String()),
		slog.Int("total", summary.Total),
		slog.Int("sugerido", summary.Sugerido),
		slog.Int("conciliado", summary.Conciliado),
		slog.Int("transferencia", summary.Transferencia),
		slog.Int("sem_match", summary.SemMatch),
	)

	return &ProcessMatchingOutput{SessionID: session.ID, Summary: summary}, nil
}

func (uc *ProcessMatchingUseCase) processOne(
	ctx context.Context,
	engine *matching.Engine,
	classifier matching.TransferClassifier,
	txn *entity.BankTransaction,
	candidates []*entity.LedgerEntry,
) (entity.ReconciliationStatus, []*entity.LedgerEntry, error) {
	release, ok, err := uc.lock.Acquire(ctx, txn.ID, LockTTL)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		uc.logger.WarnContext(ctx, "bank transaction locked by another request, skipping",
			slog.String("bank_transaction_id", txn.ID.String()),
		)
		return txn.Status, nil, nil
	}
	defer release()

	// Transfer classification wins over any stored match state: a suggestion
	// from an earlier pass must not survive the reclassification.
	if classifier.IsTransfer(txn) {
		cleared, err := uc.clearMatchState(ctx, txn.ID)
		if err != nil {
			return "", nil, err
		}
		if cleared || txn.Status != entity.ReconciliationStatusTransferencia {
			if err := uc.bankTxnRepo.UpdateStatus(ctx, txn.ID, entity.ReconciliationStatusTransferencia); err != nil {
				return "", nil, err
			}
			txn.Status = entity.ReconciliationStatusTransferencia
		}
		return entity.ReconciliationStatusTransferencia, nil, nil
	}

	// Operator decisions from earlier passes are preserved.
	switch txn.Status {
	case entity.ReconciliationStatusConciliado, entity.ReconciliationStatusRejeitado:
		return txn.Status, nil, nil
	}

	// A transaction whose bank identifier is already confirmed on a sibling
	// row is a likely duplicate import; it never receives a match.
	if err := ensureIdentifierUnconfirmed(ctx, uc.bankTxnRepo, txn); err != nil {
		if !errors.Is(err, domainerror.ErrDuplicateIdentifierConflict) {
			return "", nil, err
		}
		uc.logger.WarnContext(ctx, "bank identifier already confirmed on another transaction, skipping",
			slog.String("bank_transaction_id", txn.ID.String()),
			slog.String("fit_id", txn.FitID),
		)
		return uc.markSemMatch(ctx, txn)
	}

	candidates = eligibleFor(txn, candidates)

	if best, eval, ok := bestCandidate(engine, txn, candidates); ok {
		status := entity.MatchStatusFor(entity.MatchTypeAutomatic, eval.Exact())
		group := buildMatchGroup(txn, []*entity.LedgerEntry{best},
			entity.MatchTypeAutomatic, status, eval.Confidence(),
			scoreFraction(eval.Score), matchReason(eval))
		if err := uc.matchRepo.ReplaceGroup(ctx, group, nil); err != nil {
			return "", nil, err
		}
		return txn.Status, group.LedgerEntries, nil
	}

	if entries := engine.FindGroup(txn, candidates); entries != nil {
		group := buildMatchGroup(txn, entries,
			entity.MatchTypeAutomatic, entity.MatchStatusSuggested, entity.ConfidenceMedium,
			scoreFraction(valueobject.ScoreMediumThreshold), "soma de grupo dentro da tolerancia")
		if err := uc.matchRepo.ReplaceGroup(ctx, group, nil); err != nil {
			return "", nil, err
		}
		return txn.Status, group.LedgerEntries, nil
	}

	return uc.markSemMatch(ctx, txn)
}

// markSemMatch settles a transaction as sem_match, dropping any match rows a
// previous pass left behind so their ledger entries are released.
func (uc *ProcessMatchingUseCase) markSemMatch(ctx context.Context, txn *entity.BankTransaction) (entity.ReconciliationStatus, []*entity.LedgerEntry, error) {
	cleared, err := uc.clearMatchState(ctx, txn.ID)
	if err != nil {
		return "", nil, err
	}
	if !cleared && txn.Status != entity.ReconciliationStatusSemMatch {
		if err := uc.bankTxnRepo.UpdateStatus(ctx, txn.ID, entity.ReconciliationStatusSemMatch); err != nil {
			return "", nil, err
		}
	}
	txn.Status = entity.ReconciliationStatusSemMatch
	return entity.ReconciliationStatusSemMatch, nil, nil
}

// clearMatchState deletes the persisted match rows of a transaction, if any,
// releasing the ledger entries they held. Reports whether rows existed.
func (uc *ProcessMatchingUseCase) clearMatchState(ctx context.Context, txnID uuid.UUID) (bool, error) {
	err := uc.matchRepo.DeleteGroup(ctx, txnID)
	if err != nil {
		if errors.Is(err, domainerror.ErrMatchGroupNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (uc *ProcessMatchingUseCase) loadCandidates(ctx context.Context, input ProcessMatchingInput) ([]*entity.LedgerEntry, error) {
	span := int(input.PeriodEnd.Sub(input.PeriodStart).Hours()/24) + 1
	center := input.PeriodStart.Add(input.PeriodEnd.Sub(input.PeriodStart) / 2)
	return uc.ledgerRepo.ListCandidates(ctx, input.CompanyID, center, span/2+candidateWindowSlackDays)
}

func (uc *ProcessMatchingUseCase) refreshSession(ctx context.Context, input ProcessMatchingInput, summary entity.MatchingSummary) (*entity.ReconciliationSession, error) {
	session, err := uc.sessionRepo.GetByStatement(ctx, input.StatementID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = entity.NewReconciliationSession(input.AccountID, input.CompanyID, input.PeriodStart, input.PeriodEnd)
		session.StatementID = input.StatementID
		session.ApplySummary(summary)
		if saveErr := uc.sessionRepo.Save(ctx, session); saveErr != nil {
			return nil, saveErr
		}
		return session, nil
	}
	session.ApplySummary(summary)
	if err := uc.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// bestCandidate returns the highest-scoring suggestable candidate for the
// transaction. Ties break on the earlier entry date for determinism.
func bestCandidate(engine *matching.Engine, txn *entity.BankTransaction, candidates []*entity.LedgerEntry) (*entity.LedgerEntry, valueobject.MatchEvaluation, bool) {
	var (
		best     *entity.LedgerEntry
		bestEval valueobject.MatchEvaluation
	)
	for _, le := range candidates {
		eval := engine.Score(txn, le)
		if !eval.Suggestable() {
			continue
		}
		if best == nil || eval.Score > bestEval.Score ||
			(eval.Score == bestEval.Score && le.Date.Before(best.Date)) {
			best = le
			bestEval = eval
		}
	}
	return best, bestEval, best != nil
}

// eligibleFor keeps entries open for matching, plus entries already held by
// this transaction's own earlier suggestion so a re-run can refresh it.
func eligibleFor(txn *entity.BankTransaction, candidates []*entity.LedgerEntry) []*entity.LedgerEntry {
	out := make([]*entity.LedgerEntry, 0, len(candidates))
	for _, le := range candidates {
		if le.EligibleForMatching() ||
			(le.Status == entity.LedgerStatusComSugestao && le.BankTransactionID != nil && *le.BankTransactionID == txn.ID) {
			out = append(out, le)
		}
	}
	return out
}

func unclaimed(candidates []*entity.LedgerEntry, claimed map[uuid.UUID]bool) []*entity.LedgerEntry {
	out := make([]*entity.LedgerEntry, 0, len(candidates))
	for _, le := range candidates {
		if !claimed[le.ID] {
			out = append(out, le)
		}
	}
	return out
}
