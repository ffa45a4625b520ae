package ofx

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainerror "github.com/concilia/backend/internal/domain/error"
)

const sampleStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>0341
<ACCTID>12345-6
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101
<DTEND>20240131
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[-3:BRT]
<TRNAMT>-150.00
<FITID>2024011001
<NAME>PAGAMENTO FORNECEDOR ALFA
<MEMO>BOLETO 333
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240115
<TRNAMT>980.50
<FITID>2024011502
<NAME>RECEBIMENTO CLIENTE BETA
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>830.50
<DTASOF>20240131
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestParseRoundTrip(t *testing.T) {
	stmt, err := Parse([]byte(sampleStatement))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if stmt.BankID != "0341" {
		t.Errorf("BankID = %q, want %q", stmt.BankID, "0341")
	}
	if stmt.AccountID != "12345-6" {
		t.Errorf("AccountID = %q, want %q", stmt.AccountID, "12345-6")
	}
	if len(stmt.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(stmt.Transactions))
	}

	first := stmt.Transactions[0]
	if !first.Amount.Equal(decimalFromString(t, "-150.00")) {
		t.Errorf("first amount = %s, want -150.00", first.Amount)
	}
	if !first.IsDebit() {
		t.Error("first transaction should be a debit")
	}
	if first.PostedAt != date(2024, 1, 10) {
		t.Errorf("first posted at = %s, want 2024-01-10", first.PostedAt)
	}
	if first.FitID != "2024011001" || first.UnstableID {
		t.Errorf("first FitID = %q (unstable=%v), want bank-provided 2024011001", first.FitID, first.UnstableID)
	}
	if first.Payee != "PAGAMENTO FORNECEDOR ALFA" {
		t.Errorf("first payee = %q", first.Payee)
	}

	second := stmt.Transactions[1]
	if second.IsDebit() {
		t.Error("second transaction should be a credit")
	}
	if !second.Amount.Equal(decimalFromString(t, "980.50")) {
		t.Errorf("second amount = %s, want 980.50", second.Amount)
	}

	if stmt.PeriodStart != date(2024, 1, 1) || stmt.PeriodEnd != date(2024, 1, 31) {
		t.Errorf("period = %s..%s, want 2024-01-01..2024-01-31", stmt.PeriodStart, stmt.PeriodEnd)
	}
	if !stmt.ClosingBalance.Equal(decimalFromString(t, "830.50")) {
		t.Errorf("closing balance = %s, want 830.50", stmt.ClosingBalance)
	}
	if stmt.BalanceDate != date(2024, 1, 31) {
		t.Errorf("balance date = %s, want 2024-01-31", stmt.BalanceDate)
	}
}

func TestParseToleratesMissingClosingTags(t *testing.T) {
	raw := `OFXHEADER:100
<OFX>
<BANKACCTFROM>
<BANKID>001
<ACCTID>777-0
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240201
<TRNAMT>-10.00
<FITID>A1
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240202
<TRNAMT>-20.00
<FITID>A2
</BANKTRANLIST>
`
	stmt, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(stmt.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(stmt.Transactions))
	}
	if stmt.Transactions[0].FitID != "A1" || stmt.Transactions[1].FitID != "A2" {
		t.Errorf("fit ids = %q, %q", stmt.Transactions[0].FitID, stmt.Transactions[1].FitID)
	}
}

func TestParseSkipsIncompleteBlocks(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{
			name: "missing amount",
			block: `<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240203
<FITID>B1
</STMTTRN>`,
		},
		{
			name: "missing date",
			block: `<STMTTRN>
<TRNTYPE>DEBIT
<TRNAMT>-5.00
<FITID>B2
</STMTTRN>`,
		},
		{
			name: "invalid calendar date",
			block: `<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240230
<TRNAMT>-5.00
<FITID>B3
</STMTTRN>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `OFXHEADER:100
<OFX>
<ACCTID>777-0
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240210
<TRNAMT>42.00
<FITID>OK1
</STMTTRN>
` + tt.block + `
</BANKTRANLIST>
`
			stmt, err := Parse([]byte(raw))
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if len(stmt.Transactions) != 1 {
				t.Fatalf("got %d transactions, want the bad block dropped", len(stmt.Transactions))
			}
			if len(stmt.Warnings) != 1 {
				t.Errorf("got %d warnings, want 1", len(stmt.Warnings))
			}
		})
	}
}

func TestParseSynthesizesUnstableIdentifiers(t *testing.T) {
	raw := `OFXHEADER:100
<OFX>
<ACCTID>777-0
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240205
<TRNAMT>-30.00
</STMTTRN>
`
	stmt, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	txn := stmt.Transactions[0]
	if txn.FitID == "" {
		t.Fatal("expected a synthesized identifier")
	}
	if !txn.UnstableID {
		t.Error("synthesized identifier must be flagged unstable")
	}
}

func TestParseRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty file", "  \n ", domainerror.ErrEmptyStatementFile},
		{"no signature", "DT;AMOUNT\n20240101;-10.00\n", domainerror.ErrInvalidFormat},
		{"no account block", "OFXHEADER:100\n<OFX>\n<STMTTRN>\n<DTPOSTED>20240101\n<TRNAMT>-1.00\n</STMTTRN>\n", domainerror.ErrInvalidFormat},
		{"no transactions", "OFXHEADER:100\n<OFX>\n<ACCTID>1\n</OFX>\n", domainerror.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			var stmtErr *domainerror.StatementError
			if !errors.As(err, &stmtErr) {
				t.Errorf("error is not a StatementError: %T", err)
			}
		})
	}
}

func TestParsePeriodFallsBackToTransactionDates(t *testing.T) {
	raw := `OFXHEADER:100
<OFX>
<ACCTID>777-0
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240207
<TRNAMT>-1.00
<FITID>C1
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240203
<TRNAMT>-2.00
<FITID>C2
</STMTTRN>
`
	stmt, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if stmt.PeriodStart != date(2024, 2, 3) || stmt.PeriodEnd != date(2024, 2, 7) {
		t.Errorf("period = %s..%s, want 2024-02-03..2024-02-07", stmt.PeriodStart, stmt.PeriodEnd)
	}
}

func TestContentHashNormalizesLineEndings(t *testing.T) {
	lf := "OFXHEADER:100\n<OFX>\n<ACCTID>1\n"
	crlf := strings.ReplaceAll(lf, "\n", "\r\n")

	if ContentHash([]byte(lf)) != ContentHash([]byte(crlf)) {
		t.Error("hash must not depend on line endings")
	}
	if ContentHash([]byte(lf)) == ContentHash([]byte(lf+"<BANKID>9\n")) {
		t.Error("different content must hash differently")
	}
}

func TestParseAmountAcceptsCommaSeparator(t *testing.T) {
	amt, err := parseAmount("-150,75")
	if err != nil {
		t.Fatalf("parseAmount returned error: %v", err)
	}
	if !amt.Equal(decimalFromString(t, "-150.75")) {
		t.Errorf("amount = %s, want -150.75", amt)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}
