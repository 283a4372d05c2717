package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/books"
)

func day(d, m, y int) int64 {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).Unix()
}

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		amount   books.Numeric
		currency string
		want     string
	}{
		{books.Cents(123456), "EUR", "€1,234.56"},
		{books.Cents(-5000), "EUR", "-€50.00"},
		{books.Cents(0), "USD", "$0.00"},
		// A zero-fraction currency rounds to whole units for display.
		{books.Cents(123456), "JPY", "¥1,235"},
		// Unknown codes fall back to the plain decimal form.
		{books.Cents(1050), "XYZ", "10.5"},
	}
	for _, tc := range testCases {
		if got := FormatAmount(tc.amount, tc.currency); got != tc.want {
			t.Errorf("FormatAmount(%s, %s) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestRenderLedger(t *testing.T) {
	account := books.Account{
		Ref:      books.AccountRef{Guid: books.NewGuid()},
		Name:     "Checking",
		Currency: "EUR",
	}
	t1 := books.TransactionRef{Guid: books.NewGuid()}
	t2 := books.TransactionRef{Guid: books.NewGuid()}
	txns := map[books.TransactionRef]books.Transaction{
		t1: {Ref: t1, Description: "October salary", DatePosted: day(3, 2, 2024)},
		t2: {Ref: t2, Description: "Groceries", DatePosted: day(15, 2, 2024)},
	}
	splits := []books.Split{
		{Transaction: t1, Account: account.Ref, Amount: books.Cents(150000), Memo: "payday", Reconciled: true},
		{Transaction: t2, Account: account.Ref, Amount: books.Cents(-5000)},
	}

	l, err := NewLedger(account, splits, txns)
	if err != nil {
		t.Fatalf("NewLedger() failed: %v", err)
	}
	if l.Balance != "€1,450.00" {
		t.Errorf("closing balance = %q, want €1,450.00", l.Balance)
	}
	if l.Entries[0].Balance != "€1,500.00" || l.Entries[1].Balance != "€1,450.00" {
		t.Errorf("running balances = %q, %q", l.Entries[0].Balance, l.Entries[1].Balance)
	}
	if l.Entries[0].Reconciled != "y" || l.Entries[1].Reconciled != "n" {
		t.Errorf("reconcile flags = %q, %q", l.Entries[0].Reconciled, l.Entries[1].Reconciled)
	}

	out := RenderLedger(l)
	for _, want := range []string{
		"# Ledger: Checking (EUR)",
		"| 2024-02-03 | October salary | payday | y | €1,500.00 | €1,500.00 |",
		"| 2024-02-15 | Groceries |  | n | -€50.00 | €1,450.00 |",
		"**Closing balance: €1,450.00**",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ledger output misses %q:\n%s", want, out)
		}
	}
}

func TestRenderChart(t *testing.T) {
	assets := books.Account{Ref: books.AccountRef{Guid: books.NewGuid()}, Name: "Assets", Type: books.AccountAsset}
	checking := books.Account{
		Ref: books.AccountRef{Guid: books.NewGuid()}, Name: "Checking",
		Type: books.AccountBank, Code: "1000", Parent: assets.Ref, Currency: "EUR",
	}
	savings := books.Account{
		Ref: books.AccountRef{Guid: books.NewGuid()}, Name: "Savings",
		Type: books.AccountBank, Parent: checking.Ref, Currency: "EUR",
	}
	// An orphan parent reference renders at top level instead of failing.
	orphan := books.Account{
		Ref: books.AccountRef{Guid: books.NewGuid()}, Name: "Orphan",
		Type: books.AccountExpense, Parent: books.AccountRef{Guid: books.NewGuid()},
	}

	c := NewChart([]books.Account{assets, checking, savings, orphan})
	wantNames := []string{"Assets", "  Checking", "    Savings", "Orphan"}
	for i, want := range wantNames {
		if c.Rows[i].Name != want {
			t.Errorf("row %d name = %q, want %q", i, c.Rows[i].Name, want)
		}
	}

	out := RenderChart(c)
	if !strings.Contains(out, "# Accounts") {
		t.Errorf("chart output misses the title:\n%s", out)
	}
	if !strings.Contains(out, "|   Checking | 1000 | bank | EUR |") {
		t.Errorf("chart output misses the indented row:\n%s", out)
	}
}

func TestRenderSplits(t *testing.T) {
	checking := books.Account{Ref: books.AccountRef{Guid: books.NewGuid()}, Name: "Checking"}
	accounts := map[books.AccountRef]books.Account{checking.Ref: checking}
	tref := books.TransactionRef{Guid: books.NewGuid()}
	txns := map[books.TransactionRef]books.Transaction{
		tref: {Ref: tref, Description: "Groceries", DatePosted: day(15, 1, 2024)},
	}
	splits := []books.Split{
		{Transaction: tref, Account: checking.Ref, Value: books.Cents(-5000), Memo: "weekly run"},
		// A split whose transaction is not in the snapshot renders bare.
		{Transaction: books.TransactionRef{Guid: books.NewGuid()}, Account: checking.Ref, Value: books.Cents(-1250)},
	}

	l, err := NewSplitList(splits, accounts, txns, "EUR")
	if err != nil {
		t.Fatalf("NewSplitList() failed: %v", err)
	}
	if l.Total != "-€62.50" {
		t.Errorf("total = %q, want -€62.50", l.Total)
	}
	if l.Rows[1].Date != "" || l.Rows[1].Description != "" {
		t.Errorf("orphan split row = %+v, want empty date and description", l.Rows[1])
	}

	out := RenderSplits(l)
	for _, want := range []string{
		"| 2024-01-15 | Groceries | Checking | weekly run | -€50.00 |",
		"**Total: -€62.50**",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("splits output misses %q:\n%s", want, out)
		}
	}
}

func TestRenderInvoice(t *testing.T) {
	sales := books.Account{Ref: books.AccountRef{Guid: books.NewGuid()}, Name: "Sales"}
	accounts := map[books.AccountRef]books.Account{sales.Ref: sales}

	commit := books.InvoiceCommit{
		ID:         "INV-001",
		Owner:      books.CustomerOwner{Ref: books.CustomerRef{Guid: books.NewGuid()}},
		DateOpened: day(3, 2, 2024),
		Notes:      "february retainer",
		Entries: []books.EntrySpec{
			{
				Description: "Consulting",
				Action:      "Hours",
				Price:       books.Cents(15000),
				Quantity:    books.FromInt(8),
				Account:     sales.Ref,
				Taxable:     true,
			},
		},
		Subtotal: books.Cents(120000),
		TaxTotal: books.Cents(22800),
	}

	doc, err := NewInvoiceDoc(commit, books.Cents(142800), "ACME Corp", "EUR", accounts)
	if err != nil {
		t.Fatalf("NewInvoiceDoc() failed: %v", err)
	}
	if doc.Lines[0].Amount != "€1,200.00" {
		t.Errorf("line amount = %q, want €1,200.00", doc.Lines[0].Amount)
	}

	out := RenderInvoice(doc)
	for _, want := range []string{
		"# Invoice INV-001",
		"- Billed to: ACME Corp",
		"- Opened: 2024-02-03",
		"- Notes: february retainer",
		"| Consulting | Hours | Sales | 8 | €150.00 | €1,200.00 | T |",
		"| Subtotal | €1,200.00 |",
		"| Tax | €228.00 |",
		"| **Total** | **€1,428.00** |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("invoice output misses %q:\n%s", want, out)
		}
	}
	// Without a billing id the line is omitted entirely.
	if strings.Contains(out, "Billing ID") {
		t.Errorf("invoice output shows an empty billing id:\n%s", out)
	}
}
