package memengine

import (
	"fmt"
	"strings"

	"github.com/etnz/books"
)

// This file implements the engine's native search primitive: an ordered
// predicate chain folded left to right over one collection, in insertion
// order, truncated by the result limit.

// SearchSplits evaluates terms against every split of the book.
func (e *Engine) SearchSplits(ref books.BookRef, terms []books.Term, limit int) ([]books.Split, error) {
	b, err := e.book(ref)
	if err != nil {
		return nil, err
	}
	var out []books.Split
	for _, s := range b.splits {
		ok, err := matches(b, s, terms)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SearchTransactions evaluates terms against every transaction of the book.
func (e *Engine) SearchTransactions(ref books.BookRef, terms []books.Term, limit int) ([]books.Transaction, error) {
	b, err := e.book(ref)
	if err != nil {
		return nil, err
	}
	var out []books.Transaction
	for _, t := range b.transactions {
		ok, err := matches(b, t, terms)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SearchAccounts evaluates terms against every account of the book.
func (e *Engine) SearchAccounts(ref books.BookRef, terms []books.Term, limit int) ([]books.Account, error) {
	b, err := e.book(ref)
	if err != nil {
		return nil, err
	}
	var out []books.Account
	for _, a := range b.accounts {
		ok, err := matches(b, a, terms)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// matches folds the chain left to right: the first term seeds the
// accumulator (its combinator is vacuous), each following term combines with
// its own. An empty chain matches everything.
func matches(b *book, entity any, terms []books.Term) (bool, error) {
	if len(terms) == 0 {
		return true, nil
	}
	acc, err := evalTerm(b, entity, terms[0])
	if err != nil {
		return false, err
	}
	for _, t := range terms[1:] {
		v, err := evalTerm(b, entity, t)
		if err != nil {
			return false, err
		}
		acc = t.Join.Apply(acc, v)
	}
	return acc, nil
}

func evalTerm(b *book, entity any, t books.Term) (bool, error) {
	field, err := resolve(b, entity, t.Path)
	if err != nil {
		return false, err
	}
	return compare(field, t.Op, t.Value)
}

// resolve walks a field path on an entity snapshot. Reference-valued fields
// hop: from a split, {"trans", "desc"} resolves the transaction then its
// description, and a path ending on a reference yields its guid.
func resolve(b *book, entity any, path []string) (any, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("memengine: empty field path")
	}
	head, rest := path[0], path[1:]

	switch v := entity.(type) {
	case books.Split:
		switch head {
		case books.ParamGuid:
			return leaf(v.Ref.Guid, rest)
		case books.ParamSplitMemo:
			return leaf(v.Memo, rest)
		case books.ParamSplitValue:
			return leaf(v.Value, rest)
		case books.ParamSplitAmount:
			return leaf(v.Amount, rest)
		case books.ParamSplitReconcile:
			return leaf(v.Reconciled, rest)
		case books.ParamSplitAccount:
			if len(rest) == 0 {
				return v.Account.Guid, nil
			}
			for _, a := range b.accounts {
				if a.Ref == v.Account {
					return resolve(b, a, rest)
				}
			}
			return nil, fmt.Errorf("account %s: %w", v.Account, ErrNotFound)
		case books.ParamSplitTrans:
			if len(rest) == 0 {
				return v.Transaction.Guid, nil
			}
			for _, t := range b.transactions {
				if t.Ref == v.Transaction {
					return resolve(b, t, rest)
				}
			}
			return nil, fmt.Errorf("transaction %s: %w", v.Transaction, ErrNotFound)
		}

	case books.Transaction:
		switch head {
		case books.ParamGuid:
			return leaf(v.Ref.Guid, rest)
		case books.ParamTransDescription:
			return leaf(v.Description, rest)
		case books.ParamTransNum:
			return leaf(v.Num, rest)
		case books.ParamTransNotes:
			return leaf(v.Notes, rest)
		case books.ParamTransDatePosted:
			return leaf(v.DatePosted, rest)
		case books.ParamTransDateEntered:
			return leaf(v.DateEntered, rest)
		}

	case books.Account:
		switch head {
		case books.ParamGuid:
			return leaf(v.Ref.Guid, rest)
		case books.ParamAccountName:
			return leaf(v.Name, rest)
		case books.ParamAccountCode:
			return leaf(v.Code, rest)
		case books.ParamAccountType:
			return leaf(v.Type, rest)
		}
	}
	return nil, fmt.Errorf("memengine: unknown field %q on %T", head, entity)
}

// leaf guards against a path continuing past a scalar field.
func leaf(value any, rest []string) (any, error) {
	if len(rest) != 0 {
		return nil, fmt.Errorf("memengine: field path continues past %T with %q", value, rest[0])
	}
	return value, nil
}

// compare applies one comparison between a resolved field and the term's
// typed literal. Operand types must agree with the field.
func compare(field any, op books.CompareOp, operand any) (bool, error) {
	switch f := field.(type) {
	case books.Guid:
		o, ok := operand.(books.Guid)
		if !ok {
			return false, typeMismatch(field, operand)
		}
		return equality(op, f == o)

	case bool:
		o, ok := operand.(bool)
		if !ok {
			return false, typeMismatch(field, operand)
		}
		return equality(op, f == o)

	case string:
		o, ok := operand.(string)
		if !ok {
			return false, typeMismatch(field, operand)
		}
		switch op {
		case books.CompareContains:
			return strings.Contains(f, o), nil
		case books.CompareNotContains:
			return !strings.Contains(f, o), nil
		default:
			return ordering(op, strings.Compare(f, o))
		}

	case int64:
		o, err := asInt64(operand)
		if err != nil {
			return false, err
		}
		switch {
		case f < o:
			return ordering(op, -1)
		case f > o:
			return ordering(op, 1)
		default:
			return ordering(op, 0)
		}

	case books.AccountType:
		o, ok := operand.(books.AccountType)
		if !ok {
			return false, typeMismatch(field, operand)
		}
		return equality(op, f == o)

	case books.Numeric:
		o, ok := operand.(books.Numeric)
		if !ok {
			return false, typeMismatch(field, operand)
		}
		c, err := f.Cmp(o)
		if err != nil {
			return false, err
		}
		return ordering(op, c)
	}
	return false, fmt.Errorf("memengine: unsupported field type %T", field)
}

func typeMismatch(field, operand any) error {
	return fmt.Errorf("memengine: operand %T does not match field %T", operand, field)
}

func asInt64(operand any) (int64, error) {
	switch v := operand.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("memengine: operand %T is not an integer", operand)
	}
}

// equality maps an equality outcome through the comparison kind; only
// equality kinds are meaningful on unordered fields.
func equality(op books.CompareOp, eq bool) (bool, error) {
	switch op {
	case books.CompareEq:
		return eq, nil
	case books.CompareNeq:
		return !eq, nil
	default:
		return false, fmt.Errorf("memengine: comparison %v needs an ordered field", op)
	}
}

// ordering maps a three-way comparison through the comparison kind.
func ordering(op books.CompareOp, c int) (bool, error) {
	switch op {
	case books.CompareEq:
		return c == 0, nil
	case books.CompareNeq:
		return c != 0, nil
	case books.CompareLt:
		return c < 0, nil
	case books.CompareLte:
		return c <= 0, nil
	case books.CompareGt:
		return c > 0, nil
	case books.CompareGte:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("memengine: comparison %v not defined for this field", op)
	}
}
