// Package query builds composable record predicates for table filters.
package query

import "strings"

// Predicate reports whether a record matches.
type Predicate[T any] func(T) bool

// Field extracts a string field from a record.
type Field[T any] func(T) string

// Text matches when q is a case-insensitive substring of any field.
// A blank q matches everything.
func Text[T any](q string, fields ...Field[T]) Predicate[T] {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return Any[T]()
	}
	return func(rec T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(rec)), q) {
				return true
			}
		}
		return false
	}
}

// Equals matches when field equals want exactly. An empty want matches everything,
// so an unselected dropdown ("all") applies no filter.
func Equals[T any](want string, field Field[T]) Predicate[T] {
	if want == "" {
		return Any[T]()
	}
	return func(rec T) bool {
		return field(rec) == want
	}
}

func Any[T any]() Predicate[T] {
	return func(T) bool { return true }
}

// All combines predicates with AND. Nil entries are skipped.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	return func(rec T) bool {
		for _, p := range preds {
			if p != nil && !p(rec) {
				return false
			}
		}
		return true
	}
}

// Apply returns the records matching pred in source order.
func Apply[T any](records []T, pred Predicate[T]) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if pred == nil || pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}
