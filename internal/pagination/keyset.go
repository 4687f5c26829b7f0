// Package pagination provides keyset (cursor) pagination primitives on top of gorm.
//
// A Keyset orders rows by a primary column and a unique tie-breaker, both in the
// same direction, so that "strictly after the cursor" is a total order and pages
// neither skip nor repeat rows while other rows are inserted.
package pagination

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Page size bounds shared by every keyset listing.
const (
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 100
)

// Direction is the sort direction applied to both keyset columns.
type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// Keyset describes the composite ordering key of a listing.
type Keyset struct {
	Primary    string
	TieBreaker string
	Direction  Direction
}

// Position is the key of the last row already delivered to the caller.
type Position struct {
	Primary    any
	TieBreaker any
}

// After returns the predicate selecting rows strictly after pos in keyset order.
func (k Keyset) After(pos Position) (string, []any) {
	op := "<"
	if k.Direction == Ascending {
		op = ">"
	}
	sql := fmt.Sprintf("(%[1]s %[3]s ? OR (%[1]s = ? AND %[2]s %[3]s ?))", k.Primary, k.TieBreaker, op)
	return sql, []any{pos.Primary, pos.Primary, pos.TieBreaker}
}

// OrderBy renders the ORDER BY clause for the keyset.
func (k Keyset) OrderBy() clause.OrderBy {
	desc := k.Direction == Descending
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: k.Primary, Raw: true}, Desc: desc},
		{Column: clause.Column{Name: k.TieBreaker, Raw: true}, Desc: desc},
	}}
}

// Page applies ordering, the optional continuation bound and the clamped limit.
func (k Keyset) Page(db *gorm.DB, after *Position, limit int) *gorm.DB {
	if after != nil {
		sql, args := k.After(*after)
		db = db.Where(sql, args...)
	}
	return db.Order(k.OrderBy()).Limit(ClampLimit(limit))
}

// ClampLimit forces limit into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	switch {
	case limit < MinLimit:
		return MinLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// NextCursor returns the cursor of the last item, or nil for an empty page.
func NextCursor[T any](items []T, cursorOf func(T) string) *string {
	if len(items) == 0 {
		return nil
	}
	cursor := cursorOf(items[len(items)-1])
	return &cursor
}
