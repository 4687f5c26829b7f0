package pagination

import (
	"strings"

	"gorm.io/gorm"
)

// Predicates accumulates AND-ed filter conditions. Conditions are kept as SQL
// text plus bind arguments so the composition can be inspected without a database.
type Predicates struct {
	clauses []string
	args    []any
}

// Add appends a condition.
func (p *Predicates) Add(sql string, args ...any) *Predicates {
	p.clauses = append(p.clauses, sql)
	p.args = append(p.args, args...)
	return p
}

// AddIf appends a condition only when ok is true.
func (p *Predicates) AddIf(ok bool, sql string, args ...any) *Predicates {
	if ok {
		p.Add(sql, args...)
	}
	return p
}

// Len reports the number of accumulated conditions.
func (p *Predicates) Len() int {
	return len(p.clauses)
}

// SQL joins the conditions with AND. An empty set renders as an empty string.
func (p *Predicates) SQL() (string, []any) {
	if len(p.clauses) == 0 {
		return "", nil
	}
	parts := make([]string, len(p.clauses))
	for i, c := range p.clauses {
		parts[i] = "(" + c + ")"
	}
	args := make([]any, len(p.args))
	copy(args, p.args)
	return strings.Join(parts, " AND "), args
}

// Apply adds the conditions to db.
func (p *Predicates) Apply(db *gorm.DB) *gorm.DB {
	if len(p.clauses) == 0 {
		return db
	}
	sql, args := p.SQL()
	return db.Where(sql, args...)
}
