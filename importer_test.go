package books

import (
	"strings"
	"testing"
)

const statementJSON = `{
	"transactions": [
		{"amount": -50.00, "category": "Groceries", "label": "weekly run"},
		{"amount": -12.50, "category": "Transport"},
		{"amount": 1500.00, "category": "Salary", "label": "october"}
	]
}`

func testMapping() ImportMapping {
	return ImportMapping{
		Rows:    "$.transactions[*]",
		Amount:  "$.amount",
		Account: "$.category",
		Memo:    "$.label",
	}
}

func TestImportSplits(t *testing.T) {
	accounts := map[string]AccountRef{
		"Groceries": testAccount(),
		"Transport": testAccount(),
		"Salary":    testAccount(),
	}

	specs, err := ImportSplits([]byte(statementJSON), testMapping(), accounts)
	if err != nil {
		t.Fatalf("ImportSplits() failed: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("ImportSplits() returned %d splits, want 3", len(specs))
	}

	// Amounts arrive in exact cents.
	wantAmounts := []Numeric{Cents(-5000), Cents(-1250), Cents(150000)}
	for i, want := range wantAmounts {
		eq, err := specs[i].Amount.Equal(want)
		if err != nil {
			t.Fatalf("Equal() failed: %v", err)
		}
		if !eq {
			t.Errorf("split %d amount = %s, want %s", i, specs[i].Amount, want)
		}
	}

	if specs[0].Account != accounts["Groceries"] {
		t.Error("split 0 resolved to the wrong account")
	}
	if specs[0].Memo != "weekly run" {
		t.Errorf("split 0 memo = %q, want %q", specs[0].Memo, "weekly run")
	}
	// A row without the optional memo field imports with an empty memo.
	if specs[1].Memo != "" {
		t.Errorf("split 1 memo = %q, want empty", specs[1].Memo)
	}
}

func TestImportSplits_UnknownAccount(t *testing.T) {
	accounts := map[string]AccountRef{"Groceries": testAccount()}
	_, err := ImportSplits([]byte(statementJSON), testMapping(), accounts)
	if err == nil {
		t.Fatal("ImportSplits() succeeded with an unmapped account")
	}
	if !strings.Contains(err.Error(), "Transport") {
		t.Errorf("error %q does not name the unmapped account", err)
	}
}

func TestImportSplits_BadDocument(t *testing.T) {
	if _, err := ImportSplits([]byte("not json"), testMapping(), nil); err == nil {
		t.Error("ImportSplits() accepted invalid JSON")
	}
	m := testMapping()
	m.Rows = "$.missing[*]"
	if _, err := ImportSplits([]byte(statementJSON), m, nil); err == nil {
		t.Error("ImportSplits() accepted a row path that matches nothing")
	}
}

func TestImportSplits_FeedsBuilder(t *testing.T) {
	checking := testAccount()
	accounts := map[string]AccountRef{
		"Groceries": testAccount(),
		"Transport": testAccount(),
		"Salary":    testAccount(),
	}
	specs, err := ImportSplits([]byte(statementJSON), testMapping(), accounts)
	if err != nil {
		t.Fatalf("ImportSplits() failed: %v", err)
	}

	// Balance the statement against the checking account and book it.
	b := NewTransaction(testBook()).Description("imported statement")
	balance := Zero()
	for _, s := range specs {
		b.Split(s.Account, s.Amount, s.Memo)
		if balance, err = balance.Add(s.Amount); err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
	}
	b.Split(checking, balance.Neg(), "")

	e := &editEngine{}
	if _, err := b.Build(e); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(e.txReq.Splits) != 4 {
		t.Errorf("committed %d splits, want 4", len(e.txReq.Splits))
	}
}
