package books

import "slices"

// Target selects the collection a query searches.
type Target int

const (
	TargetNone Target = iota // target not set yet
	TargetSplit
	TargetTransaction
	TargetAccount
)

func (t Target) String() string {
	switch t {
	case TargetSplit:
		return "split"
	case TargetTransaction:
		return "transaction"
	case TargetAccount:
		return "account"
	default:
		return "none"
	}
}

// CompareOp is the comparison kind of one predicate term.
type CompareOp int

const (
	CompareEq CompareOp = iota
	CompareNeq
	CompareLt
	CompareLte
	CompareGt
	CompareGte
	CompareContains
	CompareNotContains
)

// Negate returns the comparison matching exactly the complement set.
func (op CompareOp) Negate() CompareOp {
	switch op {
	case CompareEq:
		return CompareNeq
	case CompareNeq:
		return CompareEq
	case CompareLt:
		return CompareGte
	case CompareLte:
		return CompareGt
	case CompareGt:
		return CompareLte
	case CompareGte:
		return CompareLt
	case CompareContains:
		return CompareNotContains
	default:
		return CompareContains
	}
}

var compareOpNames = [...]string{
	CompareEq:          "=",
	CompareNeq:         "!=",
	CompareLt:          "<",
	CompareLte:         "<=",
	CompareGt:          ">",
	CompareGte:         ">=",
	CompareContains:    "contains",
	CompareNotContains: "!contains",
}

func (op CompareOp) String() string {
	if op < 0 || int(op) >= len(compareOpNames) {
		return "unknown"
	}
	return compareOpNames[op]
}

// QueryOp is the boolean combinator joining a term to the chain before it.
type QueryOp int

const (
	QueryAnd QueryOp = iota
	QueryOr
	QueryNand
	QueryNor
	QueryXor
)

// dual returns the combinator op' such that, with both operands negated,
// (¬x op' ¬y) == ¬(x op y). Xor is self-dual with only the left operand
// negated, which Invert accounts for by leaving the right-hand term as is.
func (op QueryOp) dual() QueryOp {
	switch op {
	case QueryAnd:
		return QueryOr
	case QueryOr:
		return QueryAnd
	case QueryNand:
		return QueryNor
	case QueryNor:
		return QueryNand
	default:
		return QueryXor
	}
}

// Apply combines the running chain value with one term's result.
func (op QueryOp) Apply(acc, term bool) bool {
	switch op {
	case QueryAnd:
		return acc && term
	case QueryOr:
		return acc || term
	case QueryNand:
		return !(acc && term)
	case QueryNor:
		return !(acc || term)
	default:
		return acc != term
	}
}

// Parameter paths understood by the engine search primitive. Compound paths
// hop through a reference: {ParamSplitTrans, ParamTransDescription} matches a
// split by its transaction's description.
const (
	ParamSplitTrans     = "trans"
	ParamSplitAccount   = "account"
	ParamSplitValue     = "value"
	ParamSplitAmount    = "amount"
	ParamSplitMemo      = "memo"
	ParamSplitReconcile = "reconcile-flag"

	ParamTransDatePosted  = "date-posted"
	ParamTransDateEntered = "date-entered"
	ParamTransDescription = "desc"
	ParamTransNum         = "num"
	ParamTransNotes       = "notes"

	ParamAccountName = "name"
	ParamAccountCode = "code"
	ParamAccountType = "account-type"

	ParamGuid = "guid"
)

// Term is one atomic predicate in a query chain: a field path, a comparison
// against a typed literal, and the combinator joining it to the chain built
// so far. The first term's Join is vacuous.
type Term struct {
	Path  []string
	Op    CompareOp
	Value any // Guid, bool, string, int64 or Numeric
	Join  QueryOp
}

func (t Term) clone() Term {
	t.Path = slices.Clone(t.Path)
	return t
}

// Query is an ordered chain of predicate terms over one collection of one
// book. Terms are combined strictly left to right; there is no grouping —
// callers needing explicit precedence pre-merge sub-queries.
//
// A query is mutated by the Add*, Merge target and Clear methods and
// consumed by a typed run, which leaves it unchanged: queries are reusable.
type Query struct {
	target Target
	book   BookRef
	terms  []Term
	limit  int

	// matchNone marks the complement of the match-everything empty chain.
	// It exists only so that Invert stays an involution on empty queries.
	matchNone bool
}

// NewQuery creates an untyped query. The target must be set with ForType
// before running.
func NewQuery() *Query { return &Query{} }

// ForType creates a query searching the given collection.
func ForType(target Target) *Query { return &Query{target: target} }

// SetSearchFor sets the collection to search.
func (q *Query) SetSearchFor(target Target) { q.target = target }

// Target returns the collection this query searches.
func (q *Query) Target() Target { return q.target }

// SetBook sets the book to search in.
func (q *Query) SetBook(book BookRef) { q.book = book }

// SetMaxResults limits the number of returned entities. The limit silently
// truncates: exceeding it is not an error. Zero or negative means unlimited.
func (q *Query) SetMaxResults(limit int) { q.limit = limit }

// Clear drops all terms and the result limit, keeping target and book.
func (q *Query) Clear() {
	q.terms = nil
	q.matchNone = false
	q.limit = 0
}

// PurgeTerms drops the terms only.
func (q *Query) PurgeTerms() {
	q.terms = nil
	q.matchNone = false
}

// HasTerms reports whether any term was added.
func (q *Query) HasTerms() bool { return len(q.terms) > 0 }

// NumTerms returns the number of terms in the chain.
func (q *Query) NumTerms() int { return len(q.terms) }

// AddMatch appends a term comparing the field at path against value, joined
// to the chain with join. The first term's join is ignored.
func (q *Query) AddMatch(path []string, op CompareOp, value any, join QueryOp) {
	q.terms = append(q.terms, Term{Path: slices.Clone(path), Op: op, Value: value, Join: join})
}

// AddGuidMatch appends an equality term on a guid-valued field.
func (q *Query) AddGuidMatch(path []string, guid Guid, join QueryOp) {
	q.AddMatch(path, CompareEq, guid, join)
}

// AddBooleanMatch appends an equality term on a boolean field.
func (q *Query) AddBooleanMatch(path []string, value bool, join QueryOp) {
	q.AddMatch(path, CompareEq, value, join)
}

// AddStringMatch appends a term on a string field.
func (q *Query) AddStringMatch(path []string, op CompareOp, value string, join QueryOp) {
	q.AddMatch(path, op, value, join)
}

// AddNumericMatch appends a term on a Numeric field.
func (q *Query) AddNumericMatch(path []string, op CompareOp, value Numeric, join QueryOp) {
	q.AddMatch(path, op, value, join)
}

// AddDateMatch appends a term on a unix-seconds date field.
func (q *Query) AddDateMatch(path []string, op CompareOp, unix int64, join QueryOp) {
	q.AddMatch(path, op, unix, join)
}

// Copy returns an independent copy of the query.
func (q *Query) Copy() *Query {
	c := &Query{target: q.target, book: q.book, limit: q.limit, matchNone: q.matchNone}
	c.terms = make([]Term, 0, len(q.terms))
	for _, t := range q.terms {
		c.terms = append(c.terms, t.clone())
	}
	return c
}

// Merge returns a new query whose chain is q's terms followed by other's
// terms, the boundary term carrying join as its combinator. This is how two
// independently built queries are grouped: the chain stays flat, no tree
// node is created. Both targets must agree; ErrIncompatibleQueryTarget
// otherwise (an untyped side adopts the other's target).
//
// A match-none marker on either side survives the merge, whatever the join:
// complemented empty queries have no term representation to splice.
func (q *Query) Merge(other *Query, join QueryOp) (*Query, error) {
	target := q.target
	switch {
	case target == TargetNone:
		target = other.target
	case other.target != TargetNone && other.target != target:
		return nil, ErrIncompatibleQueryTarget
	}
	m := q.Copy()
	m.target = target
	m.matchNone = q.matchNone || other.matchNone
	for i, t := range other.terms {
		t = t.clone()
		if i == 0 {
			t.Join = join
		}
		m.terms = append(m.terms, t)
	}
	return m, nil
}

// Invert returns a new query matching exactly the complement of q within the
// same collection. The chain is rewritten in place of re-running and
// set-subtracting: each term's comparison is negated and each combinator is
// replaced by its dual, which negates the left-associative fold as a whole
// (for an Xor join only the left side of the fold is negated, so the
// right-hand term keeps its comparison).
//
// An empty chain matches everything, so its inversion carries a match-none
// marker instead; inverting again restores the original.
func (q *Query) Invert() *Query {
	c := q.Copy()
	if c.matchNone {
		c.matchNone = false
		return c
	}
	if len(c.terms) == 0 {
		c.matchNone = true
		return c
	}
	c.terms[0].Op = c.terms[0].Op.Negate()
	for i := 1; i < len(c.terms); i++ {
		if c.terms[i].Join != QueryXor {
			c.terms[i].Op = c.terms[i].Op.Negate()
		}
		c.terms[i].Join = c.terms[i].Join.dual()
	}
	return c
}

// run-state checks shared by the typed runs.
func (q *Query) runnable(want Target) error {
	if q.target != want {
		return ErrIncompatibleQueryTarget
	}
	if q.book.IsNull() {
		return ErrNoBookSet
	}
	return nil
}

// RunSplits executes the query against the engine and returns matched splits
// in the engine's native iteration order. The query is left unchanged.
func (q *Query) RunSplits(e Engine) ([]Split, error) {
	if err := q.runnable(TargetSplit); err != nil {
		return nil, err
	}
	if q.matchNone {
		return nil, nil
	}
	return e.SearchSplits(q.book, q.terms, q.limit)
}

// RunTransactions executes the query and returns matched transactions.
func (q *Query) RunTransactions(e Engine) ([]Transaction, error) {
	if err := q.runnable(TargetTransaction); err != nil {
		return nil, err
	}
	if q.matchNone {
		return nil, nil
	}
	return e.SearchTransactions(q.book, q.terms, q.limit)
}

// RunAccounts executes the query and returns matched accounts.
func (q *Query) RunAccounts(e Engine) ([]Account, error) {
	if err := q.runnable(TargetAccount); err != nil {
		return nil, err
	}
	if q.matchNone {
		return nil, nil
	}
	return e.SearchAccounts(q.book, q.terms, q.limit)
}
