// Package ofx decodes OFX 1.x (SGML) bank statements into normalized
// transactions and statement metadata. Parsing is best effort: transaction
// blocks missing a posted date or an amount are skipped with a warning,
// while file-level structural problems abort the parse.
package ofx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainerror "github.com/concilia/backend/internal/domain/error"
)

// Transaction is one decoded <STMTTRN> block.
type Transaction struct {
	Type     string // raw TRNTYPE value
	PostedAt time.Time
	Amount   decimal.Decimal // signed as reported by the bank

	// FitID is the bank-assigned identifier. When the block carries no FITID
	// one is synthesized from the block position and parse time; UnstableID
	// marks those so duplicate detection can treat them as weak.
	FitID      string
	UnstableID bool

	CheckNumber     string
	ReferenceNumber string
	Payee           string // NAME
	Memo            string
}

// IsDebit reports whether the transaction moves money out of the account.
func (t Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// Statement is the decoded result of one OFX file.
type Statement struct {
	BankID    string
	AccountID string

	PeriodStart    time.Time
	PeriodEnd      time.Time
	ClosingBalance decimal.Decimal
	BalanceDate    time.Time

	Transactions []Transaction

	// Warnings collects per-transaction issues recovered during parsing.
	Warnings []string
}

// ContentHash returns the sha256 hex digest of the normalized file body. The
// hash is the per-account deduplication key for uploaded statements.
func ContentHash(raw []byte) string {
	sum := sha256.Sum256([]byte(normalize(string(raw))))
	return hex.EncodeToString(sum[:])
}

// Parse decodes raw OFX content. It returns ErrInvalidFormat (wrapped in a
// StatementError) when the file lacks the OFX signature, an account block or
// any transaction block.
func Parse(raw []byte) (*Statement, error) {
	body := normalize(string(raw))
	if strings.TrimSpace(body) == "" {
		return nil, domainerror.NewStatementError(
			domainerror.ErrCodeEmptyStatementFile,
			"statement file is empty",
			domainerror.ErrEmptyStatementFile,
		)
	}

	if !hasSignature(body) {
		return nil, domainerror.NewStatementError(
			domainerror.ErrCodeInvalidFormat,
			"missing OFX signature",
			domainerror.ErrInvalidFormat,
		)
	}

	stmt := &Statement{}
	var current map[string]string
	inTxn := false
	txnIndex := 0
	parsedAt := time.Now().UTC()

	flush := func() {
		if !inTxn {
			return
		}
		inTxn = false
		txnIndex++
		txn, warn := buildTransaction(current, txnIndex, parsedAt)
		if warn != "" {
			stmt.Warnings = append(stmt.Warnings, warn)
			return
		}
		stmt.Transactions = append(stmt.Transactions, txn)
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.EqualFold(line, "<STMTTRN>"):
			// A new block while one is open means the closing tag was omitted.
			flush()
			inTxn = true
			current = map[string]string{}
			continue
		case strings.EqualFold(line, "</STMTTRN>"):
			flush()
			continue
		}

		tag, value, ok := splitTag(line)
		if !ok {
			continue
		}
		if strings.HasPrefix(tag, "/") {
			// Closing tag of an aggregate; an open transaction block does not
			// survive past its enclosing aggregate.
			if !inTxn {
				continue
			}
			if tag == "/BANKTRANLIST" || tag == "/STMTRS" || tag == "/OFX" {
				flush()
			}
			continue
		}

		if inTxn {
			if _, exists := current[tag]; !exists {
				current[tag] = value
			}
			continue
		}

		switch tag {
		case "BANKID":
			if stmt.BankID == "" {
				stmt.BankID = value
			}
		case "ACCTID":
			if stmt.AccountID == "" {
				stmt.AccountID = value
			}
		case "DTSTART":
			if d, err := parseDate(value); err == nil {
				stmt.PeriodStart = d
			}
		case "DTEND":
			if d, err := parseDate(value); err == nil {
				stmt.PeriodEnd = d
			}
		case "BALAMT":
			if amt, err := parseAmount(value); err == nil {
				stmt.ClosingBalance = amt
			}
		case "DTASOF":
			if d, err := parseDate(value); err == nil {
				stmt.BalanceDate = d
			}
		}
	}
	flush()

	if stmt.AccountID == "" {
		return nil, domainerror.NewStatementError(
			domainerror.ErrCodeInvalidFormat,
			"missing account identification block",
			domainerror.ErrInvalidFormat,
		)
	}
	if len(stmt.Transactions) == 0 && len(stmt.Warnings) == 0 {
		return nil, domainerror.NewStatementError(
			domainerror.ErrCodeInvalidFormat,
			"no transaction blocks found",
			domainerror.ErrInvalidFormat,
		)
	}

	fillPeriod(stmt)

	return stmt, nil
}

// buildTransaction assembles one transaction from its tag map. A non-empty
// warning means the block was dropped.
func buildTransaction(tags map[string]string, position int, parsedAt time.Time) (Transaction, string) {
	rawDate, hasDate := tags["DTPOSTED"]
	rawAmount, hasAmount := tags["TRNAMT"]
	if !hasDate || !hasAmount {
		return Transaction{}, fmt.Sprintf("transaction block %d skipped: missing DTPOSTED or TRNAMT", position)
	}

	postedAt, err := parseDate(rawDate)
	if err != nil {
		return Transaction{}, fmt.Sprintf("transaction block %d skipped: invalid date %q", position, rawDate)
	}
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return Transaction{}, fmt.Sprintf("transaction block %d skipped: invalid amount %q", position, rawAmount)
	}

	txn := Transaction{
		Type:            tags["TRNTYPE"],
		PostedAt:        postedAt,
		Amount:          amount,
		FitID:           strings.TrimSpace(tags["FITID"]),
		CheckNumber:     strings.TrimSpace(tags["CHECKNUM"]),
		ReferenceNumber: strings.TrimSpace(tags["REFNUM"]),
		Payee:           strings.TrimSpace(tags["NAME"]),
		Memo:            strings.TrimSpace(tags["MEMO"]),
	}

	if txn.FitID == "" {
		// Non-stable across re-parses; flagged so duplicate detection can
		// treat these differently from bank-guaranteed identifiers.
		txn.FitID = fmt.Sprintf("synt-%d-%d", position, parsedAt.UnixNano())
		txn.UnstableID = true
	}

	return txn, ""
}

// fillPeriod falls back to min/max transaction dates when the file omits
// DTSTART/DTEND.
func fillPeriod(stmt *Statement) {
	if len(stmt.Transactions) == 0 {
		return
	}
	if stmt.PeriodStart.IsZero() || stmt.PeriodEnd.IsZero() {
		min, max := stmt.Transactions[0].PostedAt, stmt.Transactions[0].PostedAt
		for _, t := range stmt.Transactions[1:] {
			if t.PostedAt.Before(min) {
				min = t.PostedAt
			}
			if t.PostedAt.After(max) {
				max = t.PostedAt
			}
		}
		if stmt.PeriodStart.IsZero() {
			stmt.PeriodStart = min
		}
		if stmt.PeriodEnd.IsZero() {
			stmt.PeriodEnd = max
		}
	}
}

// normalize unifies line endings so hashing and parsing see one body.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// hasSignature checks the OFX format markers: either the SGML OFXHEADER
// preamble or the <OFX> root tag.
func hasSignature(body string) bool {
	upper := strings.ToUpper(body)
	return strings.Contains(upper, "OFXHEADER") || strings.Contains(upper, "<OFX>")
}

// splitTag decodes one "<TAG>value" line. SGML OFX lines carry the value
// after the opening tag with no closing tag on the same line required.
func splitTag(line string) (tag, value string, ok bool) {
	if !strings.HasPrefix(line, "<") {
		return "", "", false
	}
	end := strings.Index(line, ">")
	if end < 1 {
		return "", "", false
	}
	tag = strings.ToUpper(strings.TrimSpace(line[1:end]))
	value = strings.TrimSpace(line[end+1:])
	// Strip a trailing closing tag when present (XML-flavored OFX 2.x lines).
	if i := strings.Index(value, "</"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return tag, value, true
}

// parseDate decodes the 8-digit YYYYMMDD prefix, discarding any time or
// timezone suffix. Invalid calendar dates are rejected.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return time.Time{}, fmt.Errorf("date too short: %q", s)
	}
	return time.Parse("20060102", s[:8])
}

// parseAmount decodes a signed decimal amount, tolerating the comma decimal
// separator some banks emit.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
