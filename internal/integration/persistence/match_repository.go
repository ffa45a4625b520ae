package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concilia/backend/internal/application/adapter"
	"github.com/concilia/backend/internal/domain/entity"
	domainerror "github.com/concilia/backend/internal/domain/error"
	"github.com/concilia/backend/internal/integration/persistence/model"
)

// matchRepository implements the adapter.MatchRepository interface.
type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new match repository instance.
func NewMatchRepository(db *gorm.DB) adapter.MatchRepository {
	return &matchRepository{db: db}
}

// GetGroup retrieves the full match group of a bank transaction.
func (r *matchRepository) GetGroup(ctx context.Context, bankTransactionID uuid.UUID, companyID uuid.UUID) (*adapter.MatchGroup, error) {
	return loadGroup(r.db.WithContext(ctx), bankTransactionID, companyID)
}

func loadGroup(db *gorm.DB, bankTransactionID uuid.UUID, companyID uuid.UUID) (*adapter.MatchGroup, error) {
	var matchModels []model.TransactionMatchModel
	err := db.
		Where("bank_transaction_id = ? AND company_id = ?", bankTransactionID, companyID).
		Order("match_order ASC").
		Find(&matchModels).Error
	if err != nil {
		return nil, err
	}
	if len(matchModels) == 0 {
		return nil, domainerror.NewReconciliationError(
			domainerror.ErrCodeMatchGroupNotFound,
			"no matches found for bank transaction",
			domainerror.ErrMatchGroupNotFound,
		)
	}

	var txnModel model.BankTransactionModel
	if err := db.Where("id = ?", bankTransactionID).First(&txnModel).Error; err != nil {
		return nil, err
	}

	entryIDs := make([]uuid.UUID, len(matchModels))
	for i, m := range matchModels {
		entryIDs[i] = m.LedgerEntryID
	}
	var entryModels []model.LedgerEntryModel
	if err := db.Where("id IN ?", entryIDs).Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entriesByID := make(map[uuid.UUID]*model.LedgerEntryModel, len(entryModels))
	for i := range entryModels {
		entriesByID[entryModels[i].ID] = &entryModels[i]
	}

	group := &adapter.MatchGroup{BankTransaction: txnModel.ToEntity()}
	for _, m := range matchModels {
		group.Matches = append(group.Matches, m.ToEntity())
		if em, ok := entriesByID[m.LedgerEntryID]; ok {
			group.LedgerEntries = append(group.LedgerEntries, em.ToEntity())
		}
	}
	return group, nil
}

// ListByStatus retrieves match groups for a company filtered by status.
func (r *matchRepository) ListByStatus(ctx context.Context, companyID uuid.UUID, status entity.MatchStatus, limit, offset int) ([]*adapter.MatchGroup, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.TransactionMatchModel{}).
		Distinct("bank_transaction_id").
		Where("company_id = ? AND status = ?", companyID, string(status)).
		Limit(limit).
		Offset(offset).
		Pluck("bank_transaction_id", &ids).Error
	if err != nil {
		return nil, err
	}

	groups := make([]*adapter.MatchGroup, 0, len(ids))
	for _, id := range ids {
		group, err := loadGroup(r.db.WithContext(ctx), id, companyID)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// ReplaceGroup atomically replaces the match group of a bank transaction.
// The delete, the inserts and every status write share one database
// transaction so readers never observe a half-replaced group.
func (r *matchRepository) ReplaceGroup(ctx context.Context, group *adapter.MatchGroup, released []*entity.LedgerEntry) error {
	txnID := group.BankTransaction.ID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Release entries referenced by the rows about to be deleted, unless
		// they are re-linked by the new group.
		var previous []model.TransactionMatchModel
		if err := tx.Where("bank_transaction_id = ?", txnID).Find(&previous).Error; err != nil {
			return err
		}
		kept := make(map[uuid.UUID]bool, len(group.LedgerEntries))
		for _, le := range group.LedgerEntries {
			kept[le.ID] = true
		}
		for _, prev := range previous {
			if !kept[prev.LedgerEntryID] {
				if err := releaseEntry(tx, prev.LedgerEntryID); err != nil {
					return err
				}
			}
		}
		for _, le := range released {
			if err := releaseEntry(tx, le.ID); err != nil {
				return err
			}
		}

		if err := tx.Where("bank_transaction_id = ?", txnID).
			Delete(&model.TransactionMatchModel{}).Error; err != nil {
			return err
		}

		for _, m := range group.Matches {
			if err := tx.Create(model.TransactionMatchModelFromEntity(m)).Error; err != nil {
				return err
			}
		}

		if err := saveBankTransactionState(tx, group.BankTransaction); err != nil {
			return err
		}
		for _, le := range group.LedgerEntries {
			if err := saveLedgerEntryState(tx, le); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateGroupStatus moves every match of the bank transaction to the given
// status and propagates the canonical statuses to both sides.
func (r *matchRepository) UpdateGroupStatus(ctx context.Context, bankTransactionID uuid.UUID, status entity.MatchStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var matches []model.TransactionMatchModel
		if err := tx.Where("bank_transaction_id = ?", bankTransactionID).Find(&matches).Error; err != nil {
			return err
		}
		if len(matches) == 0 {
			return domainerror.NewReconciliationError(
				domainerror.ErrCodeMatchGroupNotFound,
				"no matches found for bank transaction",
				domainerror.ErrMatchGroupNotFound,
			)
		}

		now := time.Now().UTC()
		if err := tx.Model(&model.TransactionMatchModel{}).
			Where("bank_transaction_id = ?", bankTransactionID).
			Updates(map[string]interface{}{"status": string(status), "updated_at": now}).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.BankTransactionModel{}).
			Where("id = ?", bankTransactionID).
			Updates(map[string]interface{}{
				"status":     string(entity.BankStatusFor(status)),
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		ledgerStatus := entity.LedgerStatusFor(status)
		for _, m := range matches {
			updates := map[string]interface{}{
				"status":     string(ledgerStatus),
				"updated_at": now,
			}
			if ledgerStatus == entity.LedgerStatusPago {
				updates["bank_transaction_id"] = nil
				updates["in_match_group"] = false
				updates["group_size"] = 0
			}
			if err := tx.Model(&model.LedgerEntryModel{}).
				Where("id = ?", m.LedgerEntryID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteGroup removes all matches of the bank transaction, resetting both sides.
func (r *matchRepository) DeleteGroup(ctx context.Context, bankTransactionID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var matches []model.TransactionMatchModel
		if err := tx.Where("bank_transaction_id = ?", bankTransactionID).Find(&matches).Error; err != nil {
			return err
		}
		if len(matches) == 0 {
			return domainerror.NewReconciliationError(
				domainerror.ErrCodeMatchGroupNotFound,
				"no matches found for bank transaction",
				domainerror.ErrMatchGroupNotFound,
			)
		}

		if err := tx.Where("bank_transaction_id = ?", bankTransactionID).
			Delete(&model.TransactionMatchModel{}).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&model.BankTransactionModel{}).
			Where("id = ?", bankTransactionID).
			Updates(map[string]interface{}{
				"status":           string(entity.ReconciliationStatusSemMatch),
				"matched_amount":   nil,
				"match_count":      0,
				"primary_match_id": nil,
				"confidence":       nil,
				"updated_at":       now,
			}).Error; err != nil {
			return err
		}

		for _, m := range matches {
			if err := releaseEntry(tx, m.LedgerEntryID); err != nil {
				return err
			}
		}
		return nil
	})
}

// LedgerEntryIDsInActiveMatches returns the ledger entry IDs referenced by
// any suggested or confirmed match for the company.
func (r *matchRepository) LedgerEntryIDsInActiveMatches(ctx context.Context, companyID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	var rows []struct {
		LedgerEntryID     uuid.UUID
		BankTransactionID uuid.UUID
	}
	err := r.db.WithContext(ctx).
		Model(&model.TransactionMatchModel{}).
		Select("ledger_entry_id, bank_transaction_id").
		Where("company_id = ? AND status IN ?", companyID,
			[]string{string(entity.MatchStatusSuggested), string(entity.MatchStatusConfirmed)}).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, row := range rows {
		out[row.LedgerEntryID] = row.BankTransactionID
	}
	return out, nil
}

func releaseEntry(tx *gorm.DB, entryID uuid.UUID) error {
	return tx.Model(&model.LedgerEntryModel{}).
		Where("id = ?", entryID).
		Updates(map[string]interface{}{
			"status":              string(entity.LedgerStatusPago),
			"bank_transaction_id": nil,
			"in_match_group":      false,
			"group_size":          0,
			"updated_at":          time.Now().UTC(),
		}).Error
}

func saveBankTransactionState(tx *gorm.DB, txn *entity.BankTransaction) error {
	var confidence *string
	if txn.Confidence != nil {
		c := string(*txn.Confidence)
		confidence = &c
	}
	return tx.Model(&model.BankTransactionModel{}).
		Where("id = ?", txn.ID).
		Updates(map[string]interface{}{
			"status":           string(txn.Status),
			"matched_amount":   txn.MatchedAmount,
			"match_count":      txn.MatchCount,
			"primary_match_id": txn.PrimaryMatchID,
			"confidence":       confidence,
			"updated_at":       time.Now().UTC(),
		}).Error
}

func saveLedgerEntryState(tx *gorm.DB, le *entity.LedgerEntry) error {
	return tx.Model(&model.LedgerEntryModel{}).
		Where("id = ?", le.ID).
		Updates(map[string]interface{}{
			"status":              string(le.Status),
			"bank_transaction_id": le.BankTransactionID,
			"in_match_group":      le.InMatchGroup,
			"group_size":          le.GroupSize,
			"updated_at":          time.Now().UTC(),
		}).Error
}
