package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/books"
)

// This file parses the little predicate language of `bks find`. An
// expression is "path op value"; the path hops with slashes (trans/desc,
// account/name) and the value is typed from the path's last element.

var compareOps = map[string]books.CompareOp{
	"=":         books.CompareEq,
	"!=":        books.CompareNeq,
	"<":         books.CompareLt,
	"<=":        books.CompareLte,
	">":         books.CompareGt,
	">=":        books.CompareGte,
	"contains":  books.CompareContains,
	"!contains": books.CompareNotContains,
	"~":         books.CompareContains,
	"!~":        books.CompareNotContains,
}

var queryOps = map[string]books.QueryOp{
	"and":  books.QueryAnd,
	"or":   books.QueryOr,
	"nand": books.QueryNand,
	"nor":  books.QueryNor,
	"xor":  books.QueryXor,
}

// addWhere parses one predicate expression and appends it to the query.
func addWhere(q *books.Query, expr string, join books.QueryOp) error {
	fields := strings.Fields(expr)
	if len(fields) < 3 {
		return fmt.Errorf("invalid predicate %q, want: path op value", expr)
	}
	path := strings.Split(fields[0], "/")
	op, ok := compareOps[fields[1]]
	if !ok {
		return fmt.Errorf("unknown comparison %q in %q", fields[1], expr)
	}
	raw := strings.Join(fields[2:], " ")

	switch path[len(path)-1] {
	case books.ParamSplitValue, books.ParamSplitAmount:
		v, err := parseAmount(raw)
		if err != nil {
			return err
		}
		q.AddNumericMatch(path, op, v, join)
	case books.ParamTransDatePosted, books.ParamTransDateEntered:
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid date %q in %q: %w", raw, expr, err)
		}
		q.AddDateMatch(path, op, t.Unix(), join)
	case books.ParamSplitReconcile:
		switch raw {
		case "y", "yes", "true":
			q.AddBooleanMatch(path, true, join)
		case "n", "no", "false":
			q.AddBooleanMatch(path, false, join)
		default:
			return fmt.Errorf("invalid boolean %q in %q", raw, expr)
		}
	case books.ParamAccountType:
		typ, ok := books.ParseAccountType(raw)
		if !ok {
			return fmt.Errorf("unknown account type %q in %q", raw, expr)
		}
		q.AddMatch(path, op, typ, join)
	case books.ParamGuid:
		guid, err := books.ParseGuid(raw)
		if err != nil {
			return fmt.Errorf("invalid guid %q in %q: %w", raw, expr, err)
		}
		q.AddGuidMatch(path, guid, join)
	default:
		q.AddStringMatch(path, op, raw, join)
	}
	return nil
}

// buildQuery parses an alternation of predicate expressions and join
// keywords: "expr [join expr]...". The first join defaults to and.
func buildQuery(target books.Target, book books.BookRef, args []string) (*books.Query, error) {
	q := books.ForType(target)
	q.SetBook(book)

	join := books.QueryAnd
	wantExpr := true
	for _, arg := range args {
		if wantExpr {
			if err := addWhere(q, arg, join); err != nil {
				return nil, err
			}
			wantExpr = false
			continue
		}
		op, ok := queryOps[strings.ToLower(arg)]
		if !ok {
			return nil, fmt.Errorf("expected a join (and, or, nand, nor, xor), got %q", arg)
		}
		join = op
		wantExpr = true
	}
	if wantExpr && len(args) > 0 {
		return nil, fmt.Errorf("dangling join at end of query")
	}
	return q, nil
}
