package store

import (
	"sort"
	"time"
)

// Key names a queryable field. Values are the stored (BSON) field names.
type Key string

const (
	KeyCreatedAt    Key = "created_at"
	KeyExpiresAt    Key = "expires_at"
	KeyDate         Key = "date"
	KeyWeekStarting Key = "week_starting"
	KeyLikes        Key = "likes"
	KeyUpvotes      Key = "upvotes"
)

type Order int

const (
	Ascending Order = iota
	Descending
)

// Window is a range-bounded, ordered read. From and To are inclusive and
// either may be nil for an open bound. A zero Limit means unbounded.
type Window struct {
	RangeKey Key
	From     any
	To       any

	SortKey Key
	Order   Order
	// TieKey breaks SortKey ties, in the same order.
	TieKey Key

	Limit int
}

// Fields resolves a Key on a row.
type Fields func(Key) any

// Contains reports whether the row falls inside the window bounds.
func (w Window) Contains(f Fields) bool {
	if w.RangeKey == "" {
		return true
	}
	v := f(w.RangeKey)
	if w.From != nil && Compare(v, w.From) < 0 {
		return false
	}
	if w.To != nil && Compare(v, w.To) > 0 {
		return false
	}
	return true
}

// Less orders two rows according to the window's sort keys.
func (w Window) Less(a, b Fields) bool {
	for _, k := range []Key{w.SortKey, w.TieKey} {
		if k == "" {
			continue
		}
		c := Compare(a(k), b(k))
		if c == 0 {
			continue
		}
		if w.Order == Descending {
			return c > 0
		}
		return c < 0
	}
	return false
}

// Apply filters, sorts and truncates rows in memory using the window.
func Apply[T any](rows []T, w Window, field func(*T, Key) any) []T {
	out := make([]T, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if w.Contains(func(k Key) any { return field(row, k) }) {
			out = append(out, *row)
		}
	}
	if w.SortKey != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return w.Less(
				func(k Key) any { return field(&out[i], k) },
				func(k Key) any { return field(&out[j], k) },
			)
		})
	}
	if w.Limit > 0 && len(out) > w.Limit {
		out = out[:w.Limit]
	}
	return out
}

// Compare orders two field values of the same kind. Values of different or
// unknown kinds compare equal.
func Compare(a, b any) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case int:
		if y, ok := b.(int); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
		}
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
		}
	}
	return 0
}
