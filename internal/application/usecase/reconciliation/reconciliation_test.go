package reconciliation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/domain/valueobject"
)

// fakeStore is an in-memory implementation of the persistence adapters used
// by the reconciliation use cases.
type fakeStore struct {
	txns     []*entity.BankTransaction
	entries  []*entity.LedgerEntry
	groups   map[uuid.UUID]*adapter.MatchGroup
	sessions map[uuid.UUID]*entity.ReconciliationSession
	rules    valueobject.RuleSet
	keywords []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups:   make(map[uuid.UUID]*adapter.MatchGroup),
		sessions: make(map[uuid.UUID]*entity.ReconciliationSession),
		rules:    valueobject.DefaultRuleSet(),
	}
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID, companyID uuid.UUID) (*entity.BankTransaction, error) {
	for _, t := range s.txns {
		if t.ID == id && t.CompanyID == companyID {
			return t, nil
		}
	}
	return nil, domainerror.NewReconciliationError(
		domainerror.ErrCodeBankTransactionNotFound, "bank transaction not found", domainerror.ErrBankTransactionNotFound)
}

func (s *fakeStore) List(_ context.Context, companyID uuid.UUID, _ adapter.BankTransactionFilter) ([]*entity.BankTransaction, error) {
	var out []*entity.BankTransaction
	for _, t := range s.txns {
		if t.CompanyID == companyID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) ListByStatement(_ context.Context, statementID uuid.UUID) ([]*entity.BankTransaction, error) {
	var out []*entity.BankTransaction
	for _, t := range s.txns {
		if t.StatementID == statementID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) ExistingFitIDs(_ context.Context, accountID uuid.UUID, fitIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, t := range s.txns {
		if t.AccountID != accountID {
			continue
		}
		for _, f := range fitIDs {
			if t.FitID == f {
				out[f] = true
			}
		}
	}
	return out, nil
}

func (s *fakeStore) FindByFitID(_ context.Context, accountID uuid.UUID, fitID string) ([]*entity.BankTransaction, error) {
	var out []*entity.BankTransaction
	for _, t := range s.txns {
		if t.AccountID == accountID && t.FitID == fitID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) ListForPeriod(_ context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) ([]*entity.BankTransaction, error) {
	var out []*entity.BankTransaction
	for _, t := range s.txns {
		if t.AccountID == accountID && !t.PostedAt.Before(periodStart) && !t.PostedAt.After(periodEnd) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status entity.ReconciliationStatus) error {
	for _, t := range s.txns {
		if t.ID == id {
			t.Status = status
			return nil
		}
	}
	return domainerror.ErrBankTransactionNotFound
}

func (s *fakeStore) CountByStatus(_ context.Context, companyID uuid.UUID, accountID *uuid.UUID, periodStart, periodEnd time.Time) (map[entity.ReconciliationStatus]int, error) {
	out := make(map[entity.ReconciliationStatus]int)
	for _, t := range s.txns {
		if t.CompanyID != companyID {
			continue
		}
		if accountID != nil && t.AccountID != *accountID {
			continue
		}
		if !t.PostedAt.Before(periodStart) && !t.PostedAt.After(periodEnd) {
			out[t.Status]++
		}
	}
	return out, nil
}

// ledgerRepo wraps fakeStore so both repository interfaces with colliding
// method names can be satisfied.
type ledgerRepo struct{ s *fakeStore }

func (r ledgerRepo) GetByID(_ context.Context, id uuid.UUID, companyID uuid.UUID) (*entity.LedgerEntry, error) {
	for _, e := range r.s.entries {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return nil, domainerror.NewReconciliationError(
		domainerror.ErrCodeLedgerEntryNotFound, "ledger entry not found", domainerror.ErrLedgerEntryNotFound)
}

func (r ledgerRepo) GetByIDs(ctx context.Context, ids []uuid.UUID, companyID uuid.UUID) ([]*entity.LedgerEntry, error) {
	out := make([]*entity.LedgerEntry, 0, len(ids))
	for _, id := range ids {
		e, err := r.GetByID(ctx, id, companyID)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r ledgerRepo) ListCandidates(_ context.Context, companyID uuid.UUID, center time.Time, windowDays int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	window := time.Duration(windowDays) * 24 * time.Hour
	for _, e := range r.s.entries {
		if e.CompanyID != companyID {
			continue
		}
		d := e.Date.Sub(center)
		if d < 0 {
			d = -d
		}
		if d <= window {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r ledgerRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.LedgerStatus) error {
	for _, e := range r.s.entries {
		if e.ID == id {
			e.Status = status
			return nil
		}
	}
	return domainerror.ErrLedgerEntryNotFound
}

func (s *fakeStore) GetGroup(_ context.Context, bankTransactionID uuid.UUID, companyID uuid.UUID) (*adapter.MatchGroup, error) {
	g, ok := s.groups[bankTransactionID]
	if !ok || g.BankTransaction.CompanyID != companyID {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeMatchGroupNotFound, "no matches found for bank transaction", domainerror.ErrMatchGroupNotFound)
	}
	return g, nil
}

func (s *fakeStore) ListByStatus(_ context.Context, companyID uuid.UUID, status entity.MatchStatus, _, _ int) ([]*adapter.MatchGroup, error) {
	var out []*adapter.MatchGroup
	for _, g := range s.groups {
		if g.BankTransaction.CompanyID == companyID && g.Matches[0].Status == status {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *fakeStore) ReplaceGroup(_ context.Context, group *adapter.MatchGroup, released []*entity.LedgerEntry) error {
	if prev, ok := s.groups[group.BankTransaction.ID]; ok {
		for _, le := range prev.LedgerEntries {
			if !contains(group.LedgerEntries, le.ID) {
				le.Status = entity.LedgerStatusPago
				le.BankTransactionID = nil
				le.InMatchGroup = false
				le.GroupSize = 0
			}
		}
	}
	for _, le := range released {
		le.Status = entity.LedgerStatusPago
		le.BankTransactionID = nil
	}
	s.groups[group.BankTransaction.ID] = group
	return nil
}

func (s *fakeStore) UpdateGroupStatus(_ context.Context, bankTransactionID uuid.UUID, status entity.MatchStatus) error {
	g, ok := s.groups[bankTransactionID]
	if !ok {
		return domainerror.ErrMatchGroupNotFound
	}
	for _, m := range g.Matches {
		m.Status = status
	}
	g.BankTransaction.Status = entity.BankStatusFor(status)
	for _, le := range g.LedgerEntries {
		le.Status = entity.LedgerStatusFor(status)
	}
	return nil
}

func (s *fakeStore) DeleteGroup(_ context.Context, bankTransactionID uuid.UUID) error {
	g, ok := s.groups[bankTransactionID]
	if !ok {
		return domainerror.ErrMatchGroupNotFound
	}
	g.BankTransaction.Status = entity.ReconciliationStatusSemMatch
	g.BankTransaction.MatchedAmount = nil
	g.BankTransaction.MatchCount = 0
	g.BankTransaction.PrimaryMatchID = nil
	for _, le := range g.LedgerEntries {
		le.Status = entity.LedgerStatusPago
		le.BankTransactionID = nil
		le.InMatchGroup = false
		le.GroupSize = 0
	}
	delete(s.groups, bankTransactionID)
	return nil
}

func (s *fakeStore) LedgerEntryIDsInActiveMatches(_ context.Context, companyID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	out := make(map[uuid.UUID]uuid.UUID)
	for txnID, g := range s.groups {
		if g.BankTransaction.CompanyID != companyID {
			continue
		}
		for _, m := range g.Matches {
			if m.Status != entity.MatchStatusRejected {
				out[m.LedgerEntryID] = txnID
			}
		}
	}
	return out, nil
}

// sessionRepo wraps fakeStore for the session interface.
type sessionRepo struct{ s *fakeStore }

func (r sessionRepo) Save(_ context.Context, session *entity.ReconciliationSession) error {
	r.s.sessions[session.StatementID] = session
	return nil
}

func (r sessionRepo) GetByStatement(_ context.Context, statementID uuid.UUID) (*entity.ReconciliationSession, error) {
	return r.s.sessions[statementID], nil
}

func (r sessionRepo) Update(_ context.Context, session *entity.ReconciliationSession) error {
	r.s.sessions[session.StatementID] = session
	return nil
}

// ruleRepo wraps fakeStore for the rule interface.
type ruleRepo struct{ s *fakeStore }

func (r ruleRepo) GetRuleSet(_ context.Context, _ uuid.UUID) (valueobject.RuleSet, error) {
	return r.s.rules, nil
}

func (r ruleRepo) GetTransferKeywords(_ context.Context, _ uuid.UUID) ([]string, error) {
	return r.s.keywords, nil
}

type fakeLock struct {
	held map[uuid.UUID]bool
}

func newFakeLock() *fakeLock { return &fakeLock{held: make(map[uuid.UUID]bool)} }

func (l *fakeLock) Acquire(_ context.Context, id uuid.UUID, _ time.Duration) (func(), bool, error) {
	if l.held[id] {
		return nil, false, nil
	}
	l.held[id] = true
	return func() { l.held[id] = false }, true, nil
}

func contains(entries []*entity.LedgerEntry, id uuid.UUID) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store       *fakeStore
	lock        *fakeLock
	companyID   uuid.UUID
	accountID   uuid.UUID
	statementID uuid.UUID
}

func newFixture() *fixture {
	return &fixture{
		store:       newFakeStore(),
		lock:        newFakeLock(),
		companyID:   uuid.New(),
		accountID:   uuid.New(),
		statementID: uuid.New(),
	}
}

func (f *fixture) addTxn(amount string, day int, payee string) *entity.BankTransaction {
	amt, _ := decimal.NewFromString(amount)
	txn := &entity.BankTransaction{
		ID:          uuid.New(),
		AccountID:   f.accountID,
		CompanyID:   f.companyID,
		StatementID: f.statementID,
		FitID:       "fit-" + uuid.NewString()[:8],
		PostedAt:    time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Amount:      amt,
		Payee:       payee,
		Status:      entity.ReconciliationStatusSemMatch,
	}
	f.store.txns = append(f.store.txns, txn)
	return txn
}

func (f *fixture) addEntry(amount string, day int, description string) *entity.LedgerEntry {
	amt, _ := decimal.NewFromString(amount)
	le := &entity.LedgerEntry{
		ID:          uuid.New(),
		CompanyID:   f.companyID,
		Date:        time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Amount:      amt,
		Description: description,
		Status:      entity.LedgerStatusPago,
	}
	f.store.entries = append(f.store.entries, le)
	return le
}

func (f *fixture) matcher() *ProcessMatchingUseCase {
	return NewProcessMatchingUseCase(f.store, ledgerRepo{f.store}, f.store, ruleRepo{f.store}, sessionRepo{f.store}, f.lock, testLogger())
}

func (f *fixture) matchingInput() ProcessMatchingInput {
	return ProcessMatchingInput{
		CompanyID:   f.companyID,
		AccountID:   f.accountID,
		StatementID: f.statementID,
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestProcessMatchingExactMatchConfirms(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	le := f.addEntry("-150.00", 10, "Pagamento Fornecedor Alfa")

	out, err := f.matcher().Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != entity.ReconciliationStatusConciliado {
		t.Errorf("txn status = %s, want conciliado", txn.Status)
	}
	if le.Status != entity.LedgerStatusConciliado {
		t.Errorf("entry status = %s, want conciliado", le.Status)
	}
	if le.BankTransactionID == nil || *le.BankTransactionID != txn.ID {
		t.Error("entry must back-reference the matched transaction")
	}
	if out.Summary.Conciliado != 1 || out.Summary.Total != 1 {
		t.Errorf("summary = %+v, want 1 conciliado of 1", out.Summary)
	}
}

func TestProcessMatchingNearMatchSuggests(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	le := f.addEntry("-150.00", 11, "Pagamento Fornecedor Alfa") // one day off

	out, err := f.matcher().Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != entity.ReconciliationStatusSugerido {
		t.Errorf("txn status = %s, want sugerido", txn.Status)
	}
	if le.Status != entity.LedgerStatusComSugestao {
		t.Errorf("entry status = %s, want com_sugestao", le.Status)
	}
	if out.Summary.Sugerido != 1 {
		t.Errorf("summary = %+v, want 1 sugerido", out.Summary)
	}

	g := f.store.groups[txn.ID]
	if g == nil {
		t.Fatal("expected a persisted match group")
	}
	if g.Matches[0].Type != entity.MatchTypeAutomatic {
		t.Errorf("match type = %s, want automatic", g.Matches[0].Type)
	}
	if g.Matches[0].Status != entity.MatchStatusSuggested {
		t.Errorf("match status = %s, want suggested", g.Matches[0].Status)
	}
}

func TestProcessMatchingTransferWinsOverCandidates(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-200.00", 10, "")
	txn.Memo = "TED TRANSFERENCIA ENTRE CONTAS"
	le := f.addEntry("-200.00", 10, "TED transferencia entre contas")

	out, err := f.matcher().Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != entity.ReconciliationStatusTransferencia {
		t.Errorf("txn status = %s, want transferencia", txn.Status)
	}
	if le.Status != entity.LedgerStatusPago {
		t.Errorf("entry status = %s, transfer classification must not claim entries", le.Status)
	}
	if out.Summary.Transferencia != 1 {
		t.Errorf("summary = %+v, want 1 transferencia", out.Summary)
	}
}

func TestProcessMatchingPreservesOperatorDecisions(t *testing.T) {
	f := newFixture()
	confirmed := f.addTxn("-10.00", 5, "JA CONCILIADO")
	confirmed.Status = entity.ReconciliationStatusConciliado
	rejected := f.addTxn("-20.00", 6, "REJEITADO")
	rejected.Status = entity.ReconciliationStatusRejeitado
	f.addEntry("-10.00", 5, "Ja conciliado")

	out, err := f.matcher().Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if confirmed.Status != entity.ReconciliationStatusConciliado {
		t.Errorf("confirmed txn moved to %s", confirmed.Status)
	}
	if rejected.Status != entity.ReconciliationStatusRejeitado {
		t.Errorf("rejected txn moved to %s", rejected.Status)
	}
	if out.Summary.Conciliado != 1 || out.Summary.Rejeitado != 1 {
		t.Errorf("summary = %+v", out.Summary)
	}
}

func TestProcessMatchingGroupFallback(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-120.00", 10, "PAGAMENTO LOTE 77")
	a := f.addEntry("-50.00", 10, "parcela um")
	b := f.addEntry("-70.00", 10, "parcela dois")

	out, err := f.matcher().Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != entity.ReconciliationStatusSugerido {
		t.Errorf("txn status = %s, want sugerido", txn.Status)
	}
	g := f.store.groups[txn.ID]
	if g == nil || len(g.Matches) != 2 {
		t.Fatalf("expected a 2-entry group, got %+v", g)
	}
	primaries := 0
	for i, m := range g.Matches {
		if m.IsPrimary {
			primaries++
		}
		if m.GroupSize != 2 {
			t.Errorf("match %d group size = %d, want 2", i, m.GroupSize)
		}
		if m.MatchOrder != i+1 {
			t.Errorf("match %d order = %d, want %d", i, m.MatchOrder, i+1)
		}
	}
	if primaries != 1 {
		t.Errorf("primaries = %d, want exactly 1", primaries)
	}
	if !a.InMatchGroup || !b.InMatchGroup {
		t.Error("grouped entries must carry the group flag")
	}
	if out.Summary.Sugerido != 1 {
		t.Errorf("summary = %+v", out.Summary)
	}
}

func TestProcessMatchingDoesNotReuseClaimedEntries(t *testing.T) {
	f := newFixture()
	first := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	second := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	f.addEntry("-150.00", 10, "Pagamento Fornecedor Alfa")

	out, err := f.matcher().Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matched := 0
	for _, txn := range []*entity.BankTransaction{first, second} {
		if txn.Status == entity.ReconciliationStatusConciliado {
			matched++
		}
	}
	if matched != 1 {
		t.Errorf("matched = %d, a single entry must satisfy only one transaction", matched)
	}
	if out.Summary.SemMatch != 1 {
		t.Errorf("summary = %+v, want 1 sem_match", out.Summary)
	}
}

func TestProcessMatchingRunsAreIdempotent(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	f.addEntry("-150.00", 11, "Pagamento Fornecedor Alfa")

	uc := f.matcher()
	if _, err := uc.Execute(context.Background(), f.matchingInput()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out, err := uc.Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if out.Summary.Sugerido != 1 || out.Summary.Total != 1 {
		t.Errorf("summary after re-run = %+v", out.Summary)
	}
	if len(f.store.groups[txn.ID].Matches) != 1 {
		t.Errorf("re-run duplicated match rows: %d", len(f.store.groups[txn.ID].Matches))
	}
	if len(f.store.sessions) != 1 {
		t.Errorf("sessions = %d, want the same session refreshed", len(f.store.sessions))
	}
}

func TestProcessMatchingTransferReclassificationReleasesMatch(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	le := f.addEntry("-150.00", 11, "Pagamento Fornecedor Alfa")

	uc := f.matcher()
	if _, err := uc.Execute(context.Background(), f.matchingInput()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if txn.Status != entity.ReconciliationStatusSugerido {
		t.Fatalf("txn status = %s, want sugerido before reclassification", txn.Status)
	}

	// The operator adds a keyword that now classifies the payee as a transfer.
	f.store.keywords = []string{"fornecedor"}
	out, err := uc.Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if txn.Status != entity.ReconciliationStatusTransferencia {
		t.Errorf("txn status = %s, want transferencia", txn.Status)
	}
	if _, ok := f.store.groups[txn.ID]; ok {
		t.Error("match rows must not survive the reclassification")
	}
	if le.Status != entity.LedgerStatusPago {
		t.Errorf("entry status = %s, want released to pago", le.Status)
	}
	if le.BankTransactionID != nil {
		t.Error("released entry must not back-reference the transaction")
	}
	if out.Summary.Transferencia != 1 || out.Summary.Total != 1 {
		t.Errorf("summary = %+v, want 1 transferencia of 1", out.Summary)
	}
}

func TestProcessMatchingReleasesStaleSuggestion(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	le := f.addEntry("-150.00", 11, "Pagamento Fornecedor Alfa")

	uc := f.matcher()
	if _, err := uc.Execute(context.Background(), f.matchingInput()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// The suggested entry is gone on the next pass.
	f.store.entries = nil
	out, err := uc.Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if txn.Status != entity.ReconciliationStatusSemMatch {
		t.Errorf("txn status = %s, want sem_match", txn.Status)
	}
	if _, ok := f.store.groups[txn.ID]; ok {
		t.Error("stale match rows must be deleted")
	}
	if le.Status != entity.LedgerStatusPago || le.BankTransactionID != nil {
		t.Errorf("entry must be released, got status %s", le.Status)
	}
	if out.Summary.SemMatch != 1 {
		t.Errorf("summary = %+v, want 1 sem_match", out.Summary)
	}
}

func TestProcessMatchingSkipsConfirmedDuplicateIdentifier(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	txn.FitID = "dup-7"
	sibling := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	sibling.FitID = "dup-7"
	sibling.Status = entity.ReconciliationStatusConciliado
	le := f.addEntry("-150.00", 10, "Pagamento Fornecedor Alfa")

	out, err := f.matcher().Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Status != entity.ReconciliationStatusSemMatch {
		t.Errorf("txn status = %s, duplicate identifiers must not match", txn.Status)
	}
	if _, ok := f.store.groups[txn.ID]; ok {
		t.Error("no match rows may be written for the duplicate row")
	}
	if le.Status != entity.LedgerStatusPago {
		t.Errorf("entry status = %s, want pago", le.Status)
	}
	if out.Summary.SemMatch != 1 || out.Summary.Conciliado != 1 {
		t.Errorf("summary = %+v, want 1 sem_match and 1 conciliado", out.Summary)
	}
}

func TestProcessMatchingSkipsLockedTransaction(t *testing.T) {
	f := newFixture()
	locked := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	free := f.addTxn("-70.00", 12, "ALUGUEL MARCO")
	f.addEntry("-150.00", 10, "Pagamento Fornecedor Alfa")
	f.addEntry("-70.00", 12, "Aluguel marco")
	f.lock.held[locked.ID] = true

	out, err := f.matcher().Execute(context.Background(), f.matchingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if locked.Status != entity.ReconciliationStatusSemMatch {
		t.Errorf("locked txn status = %s, must stay untouched", locked.Status)
	}
	if _, ok := f.store.groups[locked.ID]; ok {
		t.Error("locked transaction must not receive match rows")
	}
	if free.Status != entity.ReconciliationStatusConciliado {
		t.Errorf("free txn status = %s, the rest of the batch must proceed", free.Status)
	}
	if out.Summary.Total != 2 || out.Summary.SemMatch != 1 || out.Summary.Conciliado != 1 {
		t.Errorf("summary = %+v", out.Summary)
	}
}

func TestCreateMatchManualGroup(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-120.00", 10, "PAGAMENTO LOTE")
	a := f.addEntry("-50.00", 10, "parcela um")
	b := f.addEntry("-70.00", 10, "parcela dois")

	uc := NewCreateMatchUseCase(f.store, ledgerRepo{f.store}, f.store, f.lock, testLogger())
	out, err := uc.Execute(context.Background(), CreateMatchInput{
		CompanyID:         f.companyID,
		BankTransactionID: txn.ID,
		LedgerEntryIDs:    []uuid.UUID{a.ID, b.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Status != entity.MatchStatusConfirmed {
		t.Errorf("status = %s, manual matches confirm directly", out.Status)
	}
	if out.GroupSize != 2 {
		t.Errorf("group size = %d, want 2", out.GroupSize)
	}
	if !out.AmountDifference.IsZero() {
		t.Errorf("amount difference = %s, want 0", out.AmountDifference)
	}
	if txn.Status != entity.ReconciliationStatusConciliado {
		t.Errorf("txn status = %s, want conciliado", txn.Status)
	}
	if a.Status != entity.LedgerStatusConciliado || b.Status != entity.LedgerStatusConciliado {
		t.Error("manual match must commit both entries")
	}
}

func TestCreateMatchValidations(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-120.00", 10, "x")
	eligible := f.addEntry("-120.00", 10, "ok")
	taken := f.addEntry("-120.00", 10, "taken")
	taken.Status = entity.LedgerStatusConciliado
	other := uuid.New()
	taken.BankTransactionID = &other

	uc := NewCreateMatchUseCase(f.store, ledgerRepo{f.store}, f.store, f.lock, testLogger())

	t.Run("empty ledger entry ids", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), CreateMatchInput{
			CompanyID:         f.companyID,
			BankTransactionID: txn.ID,
		})
		if !errors.Is(err, domainerror.ErrEmptyLedgerEntryIDs) {
			t.Errorf("err = %v, want ErrEmptyLedgerEntryIDs", err)
		}
	})

	t.Run("entry held by another match", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), CreateMatchInput{
			CompanyID:         f.companyID,
			BankTransactionID: txn.ID,
			LedgerEntryIDs:    []uuid.UUID{taken.ID},
		})
		if !errors.Is(err, domainerror.ErrLedgerEntryNotEligible) {
			t.Errorf("err = %v, want ErrLedgerEntryNotEligible", err)
		}
	})

	t.Run("locked transaction", func(t *testing.T) {
		f.lock.held[txn.ID] = true
		defer func() { f.lock.held[txn.ID] = false }()
		_, err := uc.Execute(context.Background(), CreateMatchInput{
			CompanyID:         f.companyID,
			BankTransactionID: txn.ID,
			LedgerEntryIDs:    []uuid.UUID{eligible.ID},
		})
		if !errors.Is(err, domainerror.ErrReconciliationLocked) {
			t.Errorf("err = %v, want ErrReconciliationLocked", err)
		}
	})

	t.Run("already reconciled transaction", func(t *testing.T) {
		txn.Status = entity.ReconciliationStatusConciliado
		defer func() { txn.Status = entity.ReconciliationStatusSemMatch }()
		_, err := uc.Execute(context.Background(), CreateMatchInput{
			CompanyID:         f.companyID,
			BankTransactionID: txn.ID,
			LedgerEntryIDs:    []uuid.UUID{eligible.ID},
		})
		if !errors.Is(err, domainerror.ErrAlreadyReconciled) {
			t.Errorf("err = %v, want ErrAlreadyReconciled", err)
		}
	})
}

func TestCreateMatchRejectsConfirmedDuplicateIdentifier(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-120.00", 10, "PAGAMENTO LOTE")
	txn.FitID = "dup-3"
	sibling := f.addTxn("-120.00", 10, "PAGAMENTO LOTE")
	sibling.FitID = "dup-3"
	sibling.Status = entity.ReconciliationStatusConciliado
	le := f.addEntry("-120.00", 10, "parcela")

	uc := NewCreateMatchUseCase(f.store, ledgerRepo{f.store}, f.store, f.lock, testLogger())
	_, err := uc.Execute(context.Background(), CreateMatchInput{
		CompanyID:         f.companyID,
		BankTransactionID: txn.ID,
		LedgerEntryIDs:    []uuid.UUID{le.ID},
	})

	var recErr *domainerror.ReconciliationError
	if !errors.As(err, &recErr) || recErr.Code != domainerror.ErrCodeDuplicateIdentifierConflict {
		t.Fatalf("err = %v, want duplicate identifier conflict", err)
	}
	if len(recErr.ConflictingTransactionIDs) != 1 || recErr.ConflictingTransactionIDs[0] != sibling.ID.String() {
		t.Errorf("conflicting ids = %v", recErr.ConflictingTransactionIDs)
	}
	if _, ok := f.store.groups[txn.ID]; ok {
		t.Error("no match rows may be written")
	}
	if le.Status != entity.LedgerStatusPago {
		t.Errorf("entry status = %s, must stay pago", le.Status)
	}
}

func TestCreateMatchReplacesOwnSuggestion(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	suggested := f.addEntry("-150.00", 11, "Pagamento Fornecedor Alfa")
	preferred := f.addEntry("-150.00", 10, "Outro lancamento")

	if _, err := f.matcher().Execute(context.Background(), f.matchingInput()); err != nil {
		t.Fatalf("matching pass: %v", err)
	}

	uc := NewCreateMatchUseCase(f.store, ledgerRepo{f.store}, f.store, f.lock, testLogger())
	if _, err := uc.Execute(context.Background(), CreateMatchInput{
		CompanyID:         f.companyID,
		BankTransactionID: txn.ID,
		LedgerEntryIDs:    []uuid.UUID{preferred.ID},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if suggested.Status != entity.LedgerStatusPago {
		t.Errorf("replaced entry status = %s, want released to pago", suggested.Status)
	}
	if preferred.Status != entity.LedgerStatusConciliado {
		t.Errorf("preferred entry status = %s, want conciliado", preferred.Status)
	}
	if len(f.store.groups[txn.ID].Matches) != 1 {
		t.Error("the old suggestion must be replaced, not accumulated")
	}
}

func TestReviewMatch(t *testing.T) {
	run := func(t *testing.T, decision ReviewDecision, wantBank entity.ReconciliationStatus, wantLedger entity.LedgerStatus) {
		f := newFixture()
		txn := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
		le := f.addEntry("-150.00", 11, "Pagamento Fornecedor Alfa")
		if _, err := f.matcher().Execute(context.Background(), f.matchingInput()); err != nil {
			t.Fatalf("matching pass: %v", err)
		}

		uc := NewReviewMatchUseCase(f.store, f.store, f.lock, testLogger())
		out, err := uc.Execute(context.Background(), ReviewMatchInput{
			CompanyID:         f.companyID,
			BankTransactionID: txn.ID,
			Decision:          decision,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.BankStatus != wantBank {
			t.Errorf("bank status = %s, want %s", out.BankStatus, wantBank)
		}
		if txn.Status != wantBank {
			t.Errorf("txn status = %s, want %s", txn.Status, wantBank)
		}
		if le.Status != wantLedger {
			t.Errorf("entry status = %s, want %s", le.Status, wantLedger)
		}
	}

	t.Run("confirm commits both sides", func(t *testing.T) {
		run(t, ReviewDecisionConfirm, entity.ReconciliationStatusConciliado, entity.LedgerStatusConciliado)
	})
	t.Run("reject releases the entry", func(t *testing.T) {
		run(t, ReviewDecisionReject, entity.ReconciliationStatusRejeitado, entity.LedgerStatusPago)
	})
	t.Run("invalid decision", func(t *testing.T) {
		f := newFixture()
		uc := NewReviewMatchUseCase(f.store, f.store, f.lock, testLogger())
		_, err := uc.Execute(context.Background(), ReviewMatchInput{
			CompanyID:         f.companyID,
			BankTransactionID: uuid.New(),
			Decision:          "maybe",
		})
		if !errors.Is(err, domainerror.ErrInvalidMatchType) {
			t.Errorf("err = %v, want ErrInvalidMatchType", err)
		}
	})
}

func TestReviewMatchRejectsConfirmedDuplicateIdentifier(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	txn.FitID = "dup-5"
	le := f.addEntry("-150.00", 11, "Pagamento Fornecedor Alfa")
	if _, err := f.matcher().Execute(context.Background(), f.matchingInput()); err != nil {
		t.Fatalf("matching pass: %v", err)
	}

	// A row with the same identifier confirms between suggestion and review.
	sibling := f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	sibling.FitID = "dup-5"
	sibling.Status = entity.ReconciliationStatusConciliado

	uc := NewReviewMatchUseCase(f.store, f.store, f.lock, testLogger())
	_, err := uc.Execute(context.Background(), ReviewMatchInput{
		CompanyID:         f.companyID,
		BankTransactionID: txn.ID,
		Decision:          ReviewDecisionConfirm,
	})
	var recErr *domainerror.ReconciliationError
	if !errors.As(err, &recErr) || recErr.Code != domainerror.ErrCodeDuplicateIdentifierConflict {
		t.Fatalf("err = %v, want duplicate identifier conflict", err)
	}
	if le.Status != entity.LedgerStatusComSugestao {
		t.Errorf("entry status = %s, the suggestion must stay pending", le.Status)
	}

	// Rejecting the suggestion remains open to the operator.
	if _, err := uc.Execute(context.Background(), ReviewMatchInput{
		CompanyID:         f.companyID,
		BankTransactionID: txn.ID,
		Decision:          ReviewDecisionReject,
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if le.Status != entity.LedgerStatusPago {
		t.Errorf("entry status = %s, want released to pago", le.Status)
	}
}

func TestListSuggestionsSummaryScopes(t *testing.T) {
	f := newFixture()
	f.addTxn("-150.00", 10, "PAGAMENTO FORNECEDOR ALFA")
	f.addEntry("-150.00", 11, "Pagamento Fornecedor Alfa")
	if _, err := f.matcher().Execute(context.Background(), f.matchingInput()); err != nil {
		t.Fatalf("matching pass: %v", err)
	}

	uc := NewListSuggestionsUseCase(f.store, f.store)
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("company wide", func(t *testing.T) {
		out, err := uc.Execute(context.Background(), ListSuggestionsInput{
			CompanyID:   f.companyID,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Suggestions) != 1 {
			t.Fatalf("suggestions = %d, want 1", len(out.Suggestions))
		}
		if out.Summary.Sugerido != 1 || out.Summary.Total != 1 {
			t.Errorf("summary = %+v, want 1 sugerido of 1", out.Summary)
		}
	})

	t.Run("narrowed to another account", func(t *testing.T) {
		other := uuid.New()
		out, err := uc.Execute(context.Background(), ListSuggestionsInput{
			CompanyID:   f.companyID,
			AccountID:   &other,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Suggestions) != 0 || out.Summary.Total != 0 {
			t.Errorf("suggestions = %d, summary = %+v, want nothing for a foreign account", len(out.Suggestions), out.Summary)
		}
	})
}

func TestUnlinkReleasesEntries(t *testing.T) {
	f := newFixture()
	txn := f.addTxn("-120.00", 10, "PAGAMENTO LOTE")
	a := f.addEntry("-50.00", 10, "parcela um")
	b := f.addEntry("-70.00", 10, "parcela dois")
	if _, err := f.matcher().Execute(context.Background(), f.matchingInput()); err != nil {
		t.Fatalf("matching pass: %v", err)
	}

	uc := NewUnlinkUseCase(f.store, f.lock, testLogger())
	out, err := uc.Execute(context.Background(), UnlinkInput{
		CompanyID:         f.companyID,
		BankTransactionID: txn.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.EntriesReleased != 2 {
		t.Errorf("released = %d, want 2", out.EntriesReleased)
	}
	if txn.Status != entity.ReconciliationStatusSemMatch {
		t.Errorf("txn status = %s, want sem_match", txn.Status)
	}
	if a.Status != entity.LedgerStatusPago || b.Status != entity.LedgerStatusPago {
		t.Error("unlink must release every ledger entry")
	}
	if a.BankTransactionID != nil || b.BankTransactionID != nil {
		t.Error("unlink must clear back-references")
	}
	if _, ok := f.store.groups[txn.ID]; ok {
		t.Error("match rows must be gone")
	}
}

func TestIntegrityValidate(t *testing.T) {
	f := newFixture()

	t.Run("missing identifier passes with warning", func(t *testing.T) {
		txn := f.addTxn("-10.00", 1, "x")
		txn.UnstableID = true
		out, err := NewIntegrityUseCase(f.store).Validate(context.Background(), ValidateTransactionInput{
			CompanyID:         f.companyID,
			BankTransactionID: txn.ID,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.Valid || len(out.Warnings) != 1 {
			t.Errorf("out = %+v, want valid with one warning", out)
		}
	})

	t.Run("already reconciled blocks", func(t *testing.T) {
		txn := f.addTxn("-10.00", 1, "x")
		txn.Status = entity.ReconciliationStatusConciliado
		_, err := NewIntegrityUseCase(f.store).Validate(context.Background(), ValidateTransactionInput{
			CompanyID:         f.companyID,
			BankTransactionID: txn.ID,
		})
		if !errors.Is(err, domainerror.ErrAlreadyReconciled) {
			t.Errorf("err = %v, want ErrAlreadyReconciled", err)
		}
	})

	t.Run("identifier confirmed elsewhere blocks with conflict payload", func(t *testing.T) {
		txn := f.addTxn("-10.00", 1, "x")
		txn.FitID = "dup-1"
		sibling := f.addTxn("-10.00", 1, "x")
		sibling.FitID = "dup-1"
		sibling.Status = entity.ReconciliationStatusConciliado

		_, err := NewIntegrityUseCase(f.store).Validate(context.Background(), ValidateTransactionInput{
			CompanyID:         f.companyID,
			BankTransactionID: txn.ID,
		})
		var recErr *domainerror.ReconciliationError
		if !errors.As(err, &recErr) || recErr.Code != domainerror.ErrCodeDuplicateIdentifierConflict {
			t.Fatalf("err = %v, want duplicate identifier conflict", err)
		}
		if len(recErr.ConflictingTransactionIDs) != 1 || recErr.ConflictingTransactionIDs[0] != sibling.ID.String() {
			t.Errorf("conflicting ids = %v", recErr.ConflictingTransactionIDs)
		}
	})
}

func TestIntegrityReport(t *testing.T) {
	f := newFixture()
	withID := f.addTxn("-10.00", 5, "a")
	withID.FitID = "stable-1"
	dupA := f.addTxn("-20.00", 6, "b")
	dupA.FitID = "dup-9"
	dupB := f.addTxn("-20.00", 7, "c")
	dupB.FitID = "dup-9"
	dupB.Status = entity.ReconciliationStatusConciliado
	unstable := f.addTxn("-30.00", 8, "d")
	unstable.UnstableID = true

	out, err := NewIntegrityUseCase(f.store).Report(context.Background(), IntegrityReportInput{
		CompanyID:   f.companyID,
		AccountID:   f.accountID,
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.TotalTransactions != 4 || out.WithBankIdentifier != 3 {
		t.Errorf("coverage counts = %d/%d, want 3/4", out.WithBankIdentifier, out.TotalTransactions)
	}
	if out.IdentifierCoverage != 0.75 {
		t.Errorf("coverage = %.2f, want 0.75", out.IdentifierCoverage)
	}
	if len(out.Duplicates) != 1 {
		t.Fatalf("duplicates = %d, want 1", len(out.Duplicates))
	}
	dup := out.Duplicates[0]
	if dup.FitID != "dup-9" || len(dup.TransactionIDs) != 2 || !dup.AnyConfirmed {
		t.Errorf("duplicate group = %+v", dup)
	}
}

func TestIntegrityReportInvalidPeriod(t *testing.T) {
	f := newFixture()
	_, err := NewIntegrityUseCase(f.store).Report(context.Background(), IntegrityReportInput{
		CompanyID:   f.companyID,
		AccountID:   f.accountID,
		PeriodStart: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domainerror.ErrInvalidPeriod) {
		t.Errorf("err = %v, want ErrInvalidPeriod", err)
	}
}
