// internal/domain/common/query.go
package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ========================================
// Query expressions
// ========================================

// Expr is a closed set of predicates a store must understand.
// Implementations: Eq, Range, In, Contains.
type Expr interface {
	exprField() string
}

// Eq matches documents whose field equals Value.
type Eq struct {
	Field string
	Value any
}

// Range matches Min <= field <= Max. A nil bound is open.
type Range struct {
	Field string
	Min   any
	Max   any
}

// In matches documents whose field equals one of Values.
type In struct {
	Field  string
	Values []any
}

// Contains matches documents whose string field contains Pattern
// (case-insensitive regular expression).
type Contains struct {
	Field   string
	Pattern string
}

func (e Eq) exprField() string       { return e.Field }
func (e Range) exprField() string    { return e.Field }
func (e In) exprField() string       { return e.Field }
func (e Contains) exprField() string { return e.Field }

// FieldOf returns the document field an expression targets.
func FieldOf(e Expr) string { return e.exprField() }

// Filter is a conjunction of expressions. The zero value matches everything.
type Filter []Expr

// And returns a new filter with more expressions appended.
func (f Filter) And(es ...Expr) Filter {
	out := make(Filter, 0, len(f)+len(es))
	out = append(out, f...)
	return append(out, es...)
}

// Split separates expressions a store can push down from the ones it has to
// evaluate in memory (Contains).
func (f Filter) Split() (pushable Filter, residual Filter) {
	for _, e := range f {
		if _, ok := e.(Contains); ok {
			residual = append(residual, e)
			continue
		}
		pushable = append(pushable, e)
	}
	return pushable, residual
}

// Match evaluates the filter against a flat document.
// Field paths may use dots to reach nested maps.
func (f Filter) Match(doc map[string]any) (bool, error) {
	for _, e := range f {
		ok, err := matchExpr(e, doc)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchExpr(e Expr, doc map[string]any) (bool, error) {
	v, present := lookup(doc, e.exprField())

	switch x := e.(type) {
	case Eq:
		if !present {
			return x.Value == nil, nil
		}
		return CompareValues(v, x.Value) == 0, nil

	case Range:
		if !present || v == nil {
			return false, nil
		}
		if x.Min != nil && CompareValues(v, x.Min) < 0 {
			return false, nil
		}
		if x.Max != nil && CompareValues(v, x.Max) > 0 {
			return false, nil
		}
		return true, nil

	case In:
		if !present {
			return false, nil
		}
		for _, want := range x.Values {
			if CompareValues(v, want) == 0 {
				return true, nil
			}
		}
		return false, nil

	case Contains:
		re, err := CompileContains(x.Pattern)
		if err != nil {
			return false, err
		}
		s, ok := v.(string)
		if !present || !ok {
			return false, nil
		}
		return re.MatchString(s), nil
	}

	return false, fmt.Errorf("%w: unsupported expression %T", ErrInvalidInput, e)
}

// CompileContains compiles a Contains pattern. Callers pass user text, so a
// pattern that is not valid regexp syntax is matched literally.
func CompileContains(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err == nil {
		return re, nil
	}
	return regexp.Compile("(?i)" + regexp.QuoteMeta(pattern))
}

func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// CompareValues orders two scalar values. Numbers of any width compare numerically,
// times chronologically, strings lexically. Mismatched kinds are unequal (1).
func CompareValues(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
		return 1
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 1
		}
		return strings.Compare(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 1
		}
		return av.Compare(bv)
	case bool:
		bv, ok := b.(bool)
		switch {
		case !ok:
			return 1
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case nil:
		if b == nil {
			return 0
		}
		return 1
	}
	return 1
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
