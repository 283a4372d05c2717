package books

import (
	"errors"
	"testing"
)

func TestInvoiceBuilder_Build(t *testing.T) {
	sales := testAccount()
	customer := CustomerOwner{Ref: CustomerRef{Guid: NewGuid()}}

	// 8 units at 150.00 each: subtotal 1200.00, no tax.
	e := &editEngine{total: Cents(120000)}
	ref, err := NewInvoice(testBook()).
		ID("INV-001").
		Owner(customer).
		DateOpened(3, 2, 2024).
		Entry("Consulting", Cents(15000), FromInt(8), sales).
		Build(e)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if ref.IsNull() {
		t.Error("Build() returned a null reference")
	}
	if e.begins != 1 || e.commits != 1 || e.rollbacks != 0 {
		t.Errorf("edit cycle = %d/%d/%d (begin/commit/rollback), want 1/1/0",
			e.begins, e.commits, e.rollbacks)
	}

	eq, err := e.invReq.Subtotal.Equal(Cents(120000))
	if err != nil {
		t.Fatalf("Equal() failed: %v", err)
	}
	if !eq {
		t.Errorf("subtotal = %s, want 1200.00", e.invReq.Subtotal)
	}
	if !e.invReq.TaxTotal.IsZero() {
		t.Errorf("tax total = %s, want zero", e.invReq.TaxTotal)
	}
	if e.invReq.ID != "INV-001" {
		t.Errorf("invoice id = %q, want INV-001", e.invReq.ID)
	}
}

func TestInvoiceBuilder_MissingOwner(t *testing.T) {
	e := &editEngine{}
	_, err := NewInvoice(testBook()).
		Entry("Consulting", Cents(15000), FromInt(1), testAccount()).
		Build(e)
	if !errors.Is(err, ErrMissingOwner) {
		t.Errorf("Build() error = %v, want ErrMissingOwner", err)
	}
}

func TestInvoiceBuilder_Empty(t *testing.T) {
	e := &editEngine{}
	_, err := NewInvoice(testBook()).
		Owner(CustomerOwner{Ref: CustomerRef{Guid: NewGuid()}}).
		Build(e)
	if !errors.Is(err, ErrEmptyInvoice) {
		t.Errorf("Build() error = %v, want ErrEmptyInvoice", err)
	}
}

func TestInvoiceBuilder_PercentTax(t *testing.T) {
	sales, vat := testAccount(), testAccount()
	table := TaxTableRef{Guid: NewGuid()}

	e := &editEngine{
		taxTables: map[TaxTableRef]TaxTable{
			table: {
				Ref:  table,
				Name: "VAT",
				Entries: []TaxTableEntry{
					{Account: vat, Amount: FromInt(19), Type: AmountPercent},
				},
			},
		},
	}
	// 1200.00 at 19%: tax 228.00, total 1428.00.
	e.total = Cents(142800)

	_, err := NewInvoice(testBook()).
		ID("INV-002").
		Owner(CustomerOwner{Ref: CustomerRef{Guid: NewGuid()}}).
		TaxedEntry("Consulting", Cents(15000), FromInt(8), sales, table).
		Build(e)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	eq, err := e.invReq.TaxTotal.Equal(Cents(22800))
	if err != nil {
		t.Fatalf("Equal() failed: %v", err)
	}
	if !eq {
		t.Errorf("tax total = %s, want 228.00", e.invReq.TaxTotal)
	}
}

func TestInvoiceBuilder_FlatAndPercentTax(t *testing.T) {
	sales, vat, fee := testAccount(), testAccount(), testAccount()
	table := TaxTableRef{Guid: NewGuid()}

	e := &editEngine{
		taxTables: map[TaxTableRef]TaxTable{
			table: {
				Ref: table,
				Entries: []TaxTableEntry{
					{Account: vat, Amount: FromInt(10), Type: AmountPercent},
					{Account: fee, Amount: Cents(500), Type: AmountValue},
				},
			},
		},
	}
	// Line 100.00: 10% is 10.00, plus flat 5.00 = 15.00 tax, 115.00 total.
	e.total = Cents(11500)

	_, err := NewInvoice(testBook()).
		Owner(VendorOwner{Ref: VendorRef{Guid: NewGuid()}}).
		TaxedEntry("Parts", Cents(10000), FromInt(1), sales, table).
		Build(e)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	eq, err := e.invReq.TaxTotal.Equal(Cents(1500))
	if err != nil {
		t.Fatalf("Equal() failed: %v", err)
	}
	if !eq {
		t.Errorf("tax total = %s, want 15.00", e.invReq.TaxTotal)
	}
}

func TestInvoiceBuilder_TotalMismatch(t *testing.T) {
	e := &editEngine{total: Cents(99999)} // engine disagrees

	ref, err := NewInvoice(testBook()).
		Owner(CustomerOwner{Ref: CustomerRef{Guid: NewGuid()}}).
		Entry("Consulting", Cents(15000), FromInt(8), testAccount()).
		Build(e)

	var mismatch *TotalMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Build() error = %v, want TotalMismatchError", err)
	}
	// The invoice is committed: the reference is valid and nothing is rolled
	// back.
	if ref.IsNull() {
		t.Error("mismatch dropped the committed reference")
	}
	if e.rollbacks != 0 {
		t.Errorf("rollbacks = %d, want 0", e.rollbacks)
	}
	eq, eqErr := mismatch.Local.Equal(Cents(120000))
	if eqErr != nil {
		t.Fatalf("Equal() failed: %v", eqErr)
	}
	if !eq {
		t.Errorf("local total = %s, want 1200.00", mismatch.Local)
	}
}

func TestInvoiceBuilder_ReusableAfterFailure(t *testing.T) {
	e := &editEngine{failCreate: true}
	b := NewInvoice(testBook()).
		Owner(CustomerOwner{Ref: CustomerRef{Guid: NewGuid()}}).
		Entry("Consulting", Cents(15000), FromInt(8), testAccount())

	_, err := b.Build(e)
	var commitErr *CommitError
	if !errors.As(err, &commitErr) {
		t.Fatalf("Build() error = %v, want CommitError", err)
	}
	if e.rollbacks != 1 {
		t.Errorf("rollbacks = %d, want 1", e.rollbacks)
	}

	e.failCreate = false
	e.total = Cents(120000)
	if _, err := b.Build(e); err != nil {
		t.Fatalf("Build() retry failed: %v", err)
	}
	if b.NumEntries() != 1 {
		t.Errorf("NumEntries() after failure = %d, want 1", b.NumEntries())
	}
}
