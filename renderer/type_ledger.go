package renderer

import (
	"time"

	"github.com/etnz/books"
)

// Ledger is the view model of one account's register: its splits in posting
// order with a running balance. Amounts are pre-formatted in the account
// currency.
type Ledger struct {
	// Account is the full account name.
	Account string `json:"account"`
	// Currency is the account currency code.
	Currency string `json:"currency"`
	// Entries are the register rows, oldest first.
	Entries []LedgerEntry `json:"entries"`
	// Balance is the closing balance after the last entry.
	Balance string `json:"balance"`
}

// LedgerEntry is a single register row.
type LedgerEntry struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Memo        string `json:"memo,omitempty"`
	Reconciled  string `json:"reconciled"`
	Amount      string `json:"amount"`
	Balance     string `json:"balance"`
}

// NewLedger builds the register of one account from its splits and the
// transactions they belong to. Splits are taken in the order given; the
// running balance is the exact rational sum, formatted per row.
func NewLedger(account books.Account, splits []books.Split, txns map[books.TransactionRef]books.Transaction) (*Ledger, error) {
	l := &Ledger{
		Account:  account.Name,
		Currency: account.Currency,
		Entries:  make([]LedgerEntry, 0, len(splits)),
	}
	balance := books.Zero()
	for _, s := range splits {
		var err error
		balance, err = balance.Add(s.Amount)
		if err != nil {
			return nil, err
		}
		t := txns[s.Transaction]
		reconciled := "n"
		if s.Reconciled {
			reconciled = "y"
		}
		l.Entries = append(l.Entries, LedgerEntry{
			Date:        formatDay(t.DatePosted),
			Description: t.Description,
			Memo:        s.Memo,
			Reconciled:  reconciled,
			Amount:      FormatAmount(s.Amount, account.Currency),
			Balance:     FormatAmount(balance, account.Currency),
		})
	}
	l.Balance = FormatAmount(balance, account.Currency)
	return l, nil
}

// formatDay renders a posting timestamp as its UTC calendar day.
func formatDay(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}
