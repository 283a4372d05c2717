package books

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// ImportMapping locates split fields inside a third-party JSON export using
// jsonpath expressions. Rows selects the list of row objects; the other
// paths are evaluated against each row.
type ImportMapping struct {
	Rows    string `yaml:"rows"`    // e.g. "$.transactions[*]"
	Amount  string `yaml:"amount"`  // a number in major units, e.g. "$.amount"
	Account string `yaml:"account"` // a string key resolved through the accounts map
	Memo    string `yaml:"memo"`    // optional
}

// ImportSplits extracts split specifications from a JSON document. Amounts
// are read as major-unit numbers and converted to exact cents; account keys
// are resolved through the accounts map. The resulting specs are meant to be
// fed to a TransactionBuilder, whose Build still enforces the balance.
func ImportSplits(data []byte, m ImportMapping, accounts map[string]AccountRef) ([]SplitSpec, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing import document: %w", err)
	}
	rv, err := jsonpath.Get(m.Rows, doc)
	if err != nil {
		return nil, fmt.Errorf("selecting rows %q: %w", m.Rows, err)
	}
	rows, ok := rv.([]any)
	if !ok {
		// a single-object selection imports as one row
		rows = []any{rv}
	}

	specs := make([]SplitSpec, 0, len(rows))
	for i, row := range rows {
		amount, err := pathFloat(m.Amount, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		key, err := pathString(m.Account, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		account, ok := accounts[key]
		if !ok {
			return nil, fmt.Errorf("row %d: no account mapped for %q", i, key)
		}
		var memo string
		if m.Memo != "" {
			// the memo is best-effort, a missing field is not an error
			if s, err := pathString(m.Memo, row); err == nil {
				memo = s
			}
		}
		cents := decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
		specs = append(specs, SplitSpec{Account: account, Amount: Cents(cents), Memo: memo})
	}
	return specs, nil
}

// pathFloat evaluates a jsonpath expression expected to yield one number.
func pathFloat(path string, obj any) (float64, error) {
	jval, err := jsonpath.Get(path, obj)
	if err != nil {
		return 0, fmt.Errorf("evaluating %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1
	// answer, or a single answer: keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("evaluating %q: not a number: %v", path, jval)
	}
	return val, nil
}

// pathString evaluates a jsonpath expression expected to yield one string.
func pathString(path string, obj any) (string, error) {
	jval, err := jsonpath.Get(path, obj)
	if err != nil {
		return "", fmt.Errorf("evaluating %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("evaluating %q: not a string: %v", path, jval)
	}
	return val, nil
}
