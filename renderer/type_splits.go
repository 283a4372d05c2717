package renderer

import (
	"github.com/etnz/books"
)

// SplitList is the view model of a split search result.
type SplitList struct {
	Rows []SplitRow `json:"rows"`
	// Total is the exact sum of the listed amounts, formatted in the
	// reporting currency.
	Total string `json:"total"`
}

// SplitRow is one result line.
type SplitRow struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Account     string `json:"account"`
	Memo        string `json:"memo,omitempty"`
	Amount      string `json:"amount"`
}

// NewSplitList builds the result view from found splits. Accounts and
// transactions are resolved through the snapshot maps; a split whose
// transaction is unknown renders with an empty date and description.
func NewSplitList(splits []books.Split, accounts map[books.AccountRef]books.Account, txns map[books.TransactionRef]books.Transaction, currency string) (*SplitList, error) {
	l := &SplitList{Rows: make([]SplitRow, 0, len(splits))}
	total := books.Zero()
	for _, s := range splits {
		var err error
		total, err = total.Add(s.Value)
		if err != nil {
			return nil, err
		}
		t := txns[s.Transaction]
		date := ""
		if t.DatePosted != 0 {
			date = formatDay(t.DatePosted)
		}
		l.Rows = append(l.Rows, SplitRow{
			Date:        date,
			Description: t.Description,
			Account:     accounts[s.Account].Name,
			Memo:        s.Memo,
			Amount:      FormatAmount(s.Value, currency),
		})
	}
	l.Total = FormatAmount(total, currency)
	return l, nil
}
