package matching

import (
	"strings"

	"github.com/concilia/backend/internal/domain/entity"
)

// TransferClassifier decides whether a bank transaction is an inter-account
// movement rather than a reconcilable economic event. The check runs before
// rule scoring and, when positive, forces the transaction status to
// transferencia regardless of any stored match state.
type TransferClassifier interface {
	IsTransfer(txn *entity.BankTransaction) bool
}

// DefaultTransferKeywords is the curated keyword list the default classifier
// matches against transaction identifiers, payee and memo text.
func DefaultTransferKeywords() []string {
	return []string{
		"TRANSFERENCIA",
		"TRANSF ENTRE CONTAS",
		"TED",
		"DOC",
		"PIX",
		"APLICACAO",
		"RESGATE",
	}
}

// KeywordClassifier is the default TransferClassifier: accent- and
// case-insensitive keyword matching over the transaction text fields.
type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier creates a classifier over the given keyword list,
// falling back to DefaultTransferKeywords when empty.
func NewKeywordClassifier(keywords []string) *KeywordClassifier {
	if len(keywords) == 0 {
		keywords = DefaultTransferKeywords()
	}
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if n := NormalizeText(k); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &KeywordClassifier{keywords: normalized}
}

// IsTransfer reports whether any transaction text field matches a keyword.
// Short keywords (TED, DOC, PIX) only count as whole words so memos like
// "DOCUMENTO 123" are not misclassified.
func (c *KeywordClassifier) IsTransfer(txn *entity.BankTransaction) bool {
	fields := []string{txn.Payee, txn.Memo, txn.ReferenceNumber}
	for _, f := range fields {
		text := NormalizeText(f)
		if text == "" {
			continue
		}
		for _, kw := range c.keywords {
			if len(kw) <= 3 {
				if containsWord(text, kw) {
					return true
				}
				continue
			}
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}

func containsWord(text, word string) bool {
	for _, w := range strings.Fields(text) {
		if w == word {
			return true
		}
	}
	return false
}
