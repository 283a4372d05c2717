package bookdb

// Schema defines the SQL statements to create the book database tables.
// Rational amounts are stored as their two 64-bit components; guids as
// 32-character hex; seq preserves the engine's insertion order.
const Schema = `
CREATE TABLE IF NOT EXISTS book (
    guid TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS accounts (
    guid TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    name TEXT NOT NULL,
    code TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    type INTEGER NOT NULL,
    parent TEXT NOT NULL DEFAULT '',   -- guid of the parent account, '' for top level
    currency TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS transactions (
    guid TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    num TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL DEFAULT '',
    date_posted INTEGER NOT NULL DEFAULT 0,
    date_entered INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS splits (
    guid TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    txn TEXT NOT NULL,
    account TEXT NOT NULL,
    amount_num INTEGER NOT NULL,
    amount_denom INTEGER NOT NULL,
    value_num INTEGER NOT NULL,
    value_denom INTEGER NOT NULL,
    memo TEXT NOT NULL DEFAULT '',
    reconciled INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_splits_txn ON splits(txn);
CREATE INDEX IF NOT EXISTS idx_splits_account ON splits(account);

-- customers, vendors, employees and jobs share one table, discriminated by
-- kind; customer is set for jobs only.
CREATE TABLE IF NOT EXISTS owners (
    guid TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    customer TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tax_tables (
    guid TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tax_table_entries (
    table_guid TEXT NOT NULL,
    seq INTEGER NOT NULL,
    account TEXT NOT NULL,
    amount_num INTEGER NOT NULL,
    amount_denom INTEGER NOT NULL,
    amount_type INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tax_table_entries ON tax_table_entries(table_guid);

CREATE TABLE IF NOT EXISTS invoices (
    guid TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    id TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    billing_id TEXT NOT NULL DEFAULT '',
    owner_kind TEXT NOT NULL,
    owner_guid TEXT NOT NULL,
    date_opened INTEGER NOT NULL DEFAULT 0,
    subtotal_num INTEGER NOT NULL,
    subtotal_denom INTEGER NOT NULL,
    tax_num INTEGER NOT NULL,
    tax_denom INTEGER NOT NULL,
    total_num INTEGER NOT NULL,
    total_denom INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS invoice_entries (
    invoice_guid TEXT NOT NULL,
    seq INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price_num INTEGER NOT NULL,
    price_denom INTEGER NOT NULL,
    qty_num INTEGER NOT NULL,
    qty_denom INTEGER NOT NULL,
    account TEXT NOT NULL,
    action TEXT NOT NULL DEFAULT '',
    taxable INTEGER NOT NULL DEFAULT 0,
    tax_table TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_invoice_entries ON invoice_entries(invoice_guid);
`
