package renderer

import (
	"strings"

	"github.com/etnz/books"
)

// Chart is the view model of the chart of accounts.
type Chart struct {
	Rows []ChartRow `json:"rows"`
}

// ChartRow is one account line, indented under its parent.
type ChartRow struct {
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Type     string `json:"type"`
	Currency string `json:"currency,omitempty"`
}

// NewChart builds the chart view from accounts in engine order. Child
// accounts are indented under their parent; an account whose parent is not
// in the list renders at top level.
func NewChart(accounts []books.Account) *Chart {
	byRef := make(map[books.AccountRef]books.Account, len(accounts))
	for _, a := range accounts {
		byRef[a.Ref] = a
	}
	c := &Chart{Rows: make([]ChartRow, 0, len(accounts))}
	for _, a := range accounts {
		depth := 0
		for p := a.Parent; !p.IsNull(); {
			parent, ok := byRef[p]
			if !ok {
				break
			}
			depth++
			p = parent.Parent
		}
		c.Rows = append(c.Rows, ChartRow{
			Name:     strings.Repeat("  ", depth) + a.Name,
			Code:     a.Code,
			Type:     a.Type.String(),
			Currency: a.Currency,
		})
	}
	return c
}
