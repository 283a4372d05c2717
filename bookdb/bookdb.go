// Package bookdb persists whole books to a single SQLite file. It speaks
// the memengine snapshot exchange: SaveBook writes an exported State,
// LoadBook reads one back with every reference intact, ready for
// memengine.ImportBook.
package bookdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/etnz/books"
	"github.com/etnz/books/memengine"
)

// DB is a book database.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) a book database file and initializes the
// schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &DB{db: db, path: path}, nil
}

// Close closes the database.
func (d *DB) Close() error { return d.db.Close() }

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// SaveBook replaces the database content with the given book snapshot.
func (d *DB) SaveBook(ref books.BookRef, st memengine.State) (err error) {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("starting save: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{
		"book", "accounts", "transactions", "splits", "owners",
		"tax_tables", "tax_table_entries", "invoices", "invoice_entries",
	} {
		if _, err = tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if _, err = tx.Exec(`INSERT INTO book (guid) VALUES (?)`, ref.Guid.String()); err != nil {
		return fmt.Errorf("saving book: %w", err)
	}
	for i, a := range st.Accounts {
		parent := ""
		if !a.Parent.IsNull() {
			parent = a.Parent.String()
		}
		_, err = tx.Exec(
			`INSERT INTO accounts (guid, seq, name, code, description, type, parent, currency)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Ref.String(), i, a.Name, a.Code, a.Description, int(a.Type), parent, a.Currency)
		if err != nil {
			return fmt.Errorf("saving account %s: %w", a.Name, err)
		}
	}
	for i, t := range st.Transactions {
		_, err = tx.Exec(
			`INSERT INTO transactions (guid, seq, description, num, notes, currency, date_posted, date_entered)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Ref.String(), i, t.Description, t.Num, t.Notes, t.Currency, t.DatePosted, t.DateEntered)
		if err != nil {
			return fmt.Errorf("saving transaction %s: %w", t.Ref, err)
		}
	}
	for i, s := range st.Splits {
		_, err = tx.Exec(
			`INSERT INTO splits (guid, seq, txn, account, amount_num, amount_denom, value_num, value_denom, memo, reconciled)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.Ref.String(), i, s.Transaction.String(), s.Account.String(),
			s.Amount.Num(), s.Amount.Denom(), s.Value.Num(), s.Value.Denom(),
			s.Memo, boolToInt(s.Reconciled))
		if err != nil {
			return fmt.Errorf("saving split %s: %w", s.Ref, err)
		}
	}

	seq := 0
	saveOwner := func(guid books.Guid, kind, name, customer string) {
		if err != nil {
			return
		}
		_, err = tx.Exec(
			`INSERT INTO owners (guid, seq, kind, name, customer) VALUES (?, ?, ?, ?, ?)`,
			guid.String(), seq, kind, name, customer)
		seq++
	}
	for _, c := range st.Customers {
		saveOwner(c.Ref.Guid, "customer", c.Name, "")
	}
	for _, v := range st.Vendors {
		saveOwner(v.Ref.Guid, "vendor", v.Name, "")
	}
	for _, e := range st.Employees {
		saveOwner(e.Ref.Guid, "employee", e.Name, "")
	}
	for _, j := range st.Jobs {
		saveOwner(j.Ref.Guid, "job", j.Name, j.Customer.String())
	}
	if err != nil {
		return fmt.Errorf("saving owners: %w", err)
	}

	for i, t := range st.TaxTables {
		if _, err = tx.Exec(`INSERT INTO tax_tables (guid, seq, name) VALUES (?, ?, ?)`,
			t.Ref.String(), i, t.Name); err != nil {
			return fmt.Errorf("saving tax table %s: %w", t.Name, err)
		}
		for j, te := range t.Entries {
			_, err = tx.Exec(
				`INSERT INTO tax_table_entries (table_guid, seq, account, amount_num, amount_denom, amount_type)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				t.Ref.String(), j, te.Account.String(), te.Amount.Num(), te.Amount.Denom(), int(te.Type))
			if err != nil {
				return fmt.Errorf("saving tax table %s entry %d: %w", t.Name, j, err)
			}
		}
	}

	for i, inv := range st.Invoices {
		c := inv.Commit
		_, err = tx.Exec(
			`INSERT INTO invoices (guid, seq, id, notes, billing_id, owner_kind, owner_guid, date_opened,
			    subtotal_num, subtotal_denom, tax_num, tax_denom, total_num, total_denom)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.Ref.String(), i, c.ID, c.Notes, c.BillingID,
			c.Owner.Type().String(), c.Owner.OwnerGuid().String(), c.DateOpened,
			c.Subtotal.Num(), c.Subtotal.Denom(), c.TaxTotal.Num(), c.TaxTotal.Denom(),
			inv.Total.Num(), inv.Total.Denom())
		if err != nil {
			return fmt.Errorf("saving invoice %s: %w", c.ID, err)
		}
		for j, e := range c.Entries {
			table := ""
			if !e.TaxTable.IsNull() {
				table = e.TaxTable.String()
			}
			_, err = tx.Exec(
				`INSERT INTO invoice_entries (invoice_guid, seq, description, price_num, price_denom,
				    qty_num, qty_denom, account, action, taxable, tax_table)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				inv.Ref.String(), j, e.Description, e.Price.Num(), e.Price.Denom(),
				e.Quantity.Num(), e.Quantity.Denom(), e.Account.String(), e.Action,
				boolToInt(e.Taxable), table)
			if err != nil {
				return fmt.Errorf("saving invoice %s entry %d: %w", c.ID, j, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

// LoadBook reads the stored book back. It returns the book reference and
// the snapshot to hand to memengine.ImportBook.
func (d *DB) LoadBook() (books.BookRef, memengine.State, error) {
	var st memengine.State
	var ref books.BookRef

	var bookGuid string
	err := d.db.QueryRow(`SELECT guid FROM book`).Scan(&bookGuid)
	if err == sql.ErrNoRows {
		return ref, st, fmt.Errorf("database %s holds no book", d.path)
	}
	if err != nil {
		return ref, st, fmt.Errorf("loading book: %w", err)
	}
	if ref.Guid, err = books.ParseGuid(bookGuid); err != nil {
		return ref, st, err
	}

	if err := d.loadAccounts(&st); err != nil {
		return ref, st, err
	}
	if err := d.loadTransactions(&st); err != nil {
		return ref, st, err
	}
	if err := d.loadOwners(&st); err != nil {
		return ref, st, err
	}
	if err := d.loadTaxTables(&st); err != nil {
		return ref, st, err
	}
	if err := d.loadInvoices(&st); err != nil {
		return ref, st, err
	}
	return ref, st, nil
}

func (d *DB) loadAccounts(st *memengine.State) error {
	rows, err := d.db.Query(
		`SELECT guid, name, code, description, type, parent, currency FROM accounts ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("loading accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a books.Account
		var guid, parent string
		var typ int
		if err := rows.Scan(&guid, &a.Name, &a.Code, &a.Description, &typ, &parent, &a.Currency); err != nil {
			return fmt.Errorf("scanning account: %w", err)
		}
		if a.Ref.Guid, err = books.ParseGuid(guid); err != nil {
			return err
		}
		if parent != "" {
			if a.Parent.Guid, err = books.ParseGuid(parent); err != nil {
				return err
			}
		}
		a.Type = books.AccountType(typ)
		st.Accounts = append(st.Accounts, a)
	}
	return rows.Err()
}

func (d *DB) loadTransactions(st *memengine.State) error {
	rows, err := d.db.Query(
		`SELECT guid, description, num, notes, currency, date_posted, date_entered FROM transactions ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("loading transactions: %w", err)
	}
	defer rows.Close()
	index := make(map[books.TransactionRef]int)
	for rows.Next() {
		var t books.Transaction
		var guid string
		if err := rows.Scan(&guid, &t.Description, &t.Num, &t.Notes, &t.Currency, &t.DatePosted, &t.DateEntered); err != nil {
			return fmt.Errorf("scanning transaction: %w", err)
		}
		if t.Ref.Guid, err = books.ParseGuid(guid); err != nil {
			return err
		}
		index[t.Ref] = len(st.Transactions)
		st.Transactions = append(st.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	srows, err := d.db.Query(
		`SELECT guid, txn, account, amount_num, amount_denom, value_num, value_denom, memo, reconciled
		 FROM splits ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("loading splits: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var s books.Split
		var guid, txn, account string
		var an, ad, vn, vd int64
		var reconciled int
		if err := srows.Scan(&guid, &txn, &account, &an, &ad, &vn, &vd, &s.Memo, &reconciled); err != nil {
			return fmt.Errorf("scanning split: %w", err)
		}
		if s.Ref.Guid, err = books.ParseGuid(guid); err != nil {
			return err
		}
		if s.Transaction.Guid, err = books.ParseGuid(txn); err != nil {
			return err
		}
		if s.Account.Guid, err = books.ParseGuid(account); err != nil {
			return err
		}
		if s.Amount, err = books.New(an, ad); err != nil {
			return fmt.Errorf("split %s amount: %w", guid, err)
		}
		if s.Value, err = books.New(vn, vd); err != nil {
			return fmt.Errorf("split %s value: %w", guid, err)
		}
		s.Reconciled = reconciled != 0
		st.Splits = append(st.Splits, s)
		if i, ok := index[s.Transaction]; ok {
			st.Transactions[i].Splits = append(st.Transactions[i].Splits, s.Ref)
		}
	}
	return srows.Err()
}

func (d *DB) loadOwners(st *memengine.State) error {
	rows, err := d.db.Query(`SELECT guid, kind, name, customer FROM owners ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("loading owners: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var guid, kind, name, customer string
		if err := rows.Scan(&guid, &kind, &name, &customer); err != nil {
			return fmt.Errorf("scanning owner: %w", err)
		}
		g, err := books.ParseGuid(guid)
		if err != nil {
			return err
		}
		switch kind {
		case "customer":
			st.Customers = append(st.Customers, memengine.Customer{Ref: books.CustomerRef{Guid: g}, Name: name})
		case "vendor":
			st.Vendors = append(st.Vendors, memengine.Vendor{Ref: books.VendorRef{Guid: g}, Name: name})
		case "employee":
			st.Employees = append(st.Employees, memengine.Employee{Ref: books.EmployeeRef{Guid: g}, Name: name})
		case "job":
			cg, err := books.ParseGuid(customer)
			if err != nil {
				return err
			}
			st.Jobs = append(st.Jobs, memengine.Job{
				Ref: books.JobRef{Guid: g}, Name: name, Customer: books.CustomerRef{Guid: cg}})
		default:
			return fmt.Errorf("unknown owner kind %q", kind)
		}
	}
	return rows.Err()
}

func (d *DB) loadTaxTables(st *memengine.State) error {
	rows, err := d.db.Query(`SELECT guid, name FROM tax_tables ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("loading tax tables: %w", err)
	}
	defer rows.Close()
	index := make(map[string]int)
	for rows.Next() {
		var t books.TaxTable
		var guid string
		if err := rows.Scan(&guid, &t.Name); err != nil {
			return fmt.Errorf("scanning tax table: %w", err)
		}
		if t.Ref.Guid, err = books.ParseGuid(guid); err != nil {
			return err
		}
		index[guid] = len(st.TaxTables)
		st.TaxTables = append(st.TaxTables, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	erows, err := d.db.Query(
		`SELECT table_guid, account, amount_num, amount_denom, amount_type FROM tax_table_entries ORDER BY table_guid, seq`)
	if err != nil {
		return fmt.Errorf("loading tax table entries: %w", err)
	}
	defer erows.Close()
	for erows.Next() {
		var table, account string
		var num, denom int64
		var typ int
		if err := erows.Scan(&table, &account, &num, &denom, &typ); err != nil {
			return fmt.Errorf("scanning tax table entry: %w", err)
		}
		i, ok := index[table]
		if !ok {
			return fmt.Errorf("tax table entry for unknown table %s", table)
		}
		var te books.TaxTableEntry
		if te.Account.Guid, err = books.ParseGuid(account); err != nil {
			return err
		}
		if te.Amount, err = books.New(num, denom); err != nil {
			return fmt.Errorf("tax table %s entry amount: %w", table, err)
		}
		te.Type = books.AmountType(typ)
		st.TaxTables[i].Entries = append(st.TaxTables[i].Entries, te)
	}
	return erows.Err()
}

func (d *DB) loadInvoices(st *memengine.State) error {
	rows, err := d.db.Query(
		`SELECT guid, id, notes, billing_id, owner_kind, owner_guid, date_opened,
		    subtotal_num, subtotal_denom, tax_num, tax_denom, total_num, total_denom
		 FROM invoices ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("loading invoices: %w", err)
	}
	defer rows.Close()
	index := make(map[string]int)
	for rows.Next() {
		var inv memengine.Invoice
		var guid, ownerKind, ownerGuid string
		var sn, sd, tn, td, totn, totd int64
		c := &inv.Commit
		if err := rows.Scan(&guid, &c.ID, &c.Notes, &c.BillingID, &ownerKind, &ownerGuid, &c.DateOpened,
			&sn, &sd, &tn, &td, &totn, &totd); err != nil {
			return fmt.Errorf("scanning invoice: %w", err)
		}
		if inv.Ref.Guid, err = books.ParseGuid(guid); err != nil {
			return err
		}
		og, err := books.ParseGuid(ownerGuid)
		if err != nil {
			return err
		}
		if c.Owner, err = ownerFromKind(ownerKind, og); err != nil {
			return fmt.Errorf("invoice %s: %w", c.ID, err)
		}
		if c.Subtotal, err = books.New(sn, sd); err != nil {
			return fmt.Errorf("invoice %s subtotal: %w", c.ID, err)
		}
		if c.TaxTotal, err = books.New(tn, td); err != nil {
			return fmt.Errorf("invoice %s tax total: %w", c.ID, err)
		}
		if inv.Total, err = books.New(totn, totd); err != nil {
			return fmt.Errorf("invoice %s total: %w", c.ID, err)
		}
		index[guid] = len(st.Invoices)
		st.Invoices = append(st.Invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	erows, err := d.db.Query(
		`SELECT invoice_guid, description, price_num, price_denom, qty_num, qty_denom,
		    account, action, taxable, tax_table
		 FROM invoice_entries ORDER BY invoice_guid, seq`)
	if err != nil {
		return fmt.Errorf("loading invoice entries: %w", err)
	}
	defer erows.Close()
	for erows.Next() {
		var invoiceGuid, account, table string
		var pn, pd, qn, qd int64
		var taxable int
		var e books.EntrySpec
		if err := erows.Scan(&invoiceGuid, &e.Description, &pn, &pd, &qn, &qd,
			&account, &e.Action, &taxable, &table); err != nil {
			return fmt.Errorf("scanning invoice entry: %w", err)
		}
		i, ok := index[invoiceGuid]
		if !ok {
			return fmt.Errorf("entry for unknown invoice %s", invoiceGuid)
		}
		if e.Account.Guid, err = books.ParseGuid(account); err != nil {
			return err
		}
		if e.Price, err = books.New(pn, pd); err != nil {
			return fmt.Errorf("invoice entry price: %w", err)
		}
		if e.Quantity, err = books.New(qn, qd); err != nil {
			return fmt.Errorf("invoice entry quantity: %w", err)
		}
		e.Taxable = taxable != 0
		if table != "" {
			if e.TaxTable.Guid, err = books.ParseGuid(table); err != nil {
				return err
			}
		}
		st.Invoices[i].Commit.Entries = append(st.Invoices[i].Commit.Entries, e)
	}
	return erows.Err()
}

func ownerFromKind(kind string, guid books.Guid) (books.Owner, error) {
	switch kind {
	case "customer":
		return books.CustomerOwner{Ref: books.CustomerRef{Guid: guid}}, nil
	case "vendor":
		return books.VendorOwner{Ref: books.VendorRef{Guid: guid}}, nil
	case "employee":
		return books.EmployeeOwner{Ref: books.EmployeeRef{Guid: guid}}, nil
	case "job":
		return books.JobOwner{Ref: books.JobRef{Guid: guid}}, nil
	default:
		return nil, fmt.Errorf("unknown owner kind %q", kind)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
