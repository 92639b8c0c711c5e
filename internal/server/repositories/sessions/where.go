package sessions

import (
	"fmt"
	"strings"
)

// where accumulates AND-ed predicates with PostgreSQL positional
// placeholders. Each clause uses %s for its (single) argument slot.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// clone lets the count and page queries share the filter predicates while
// only the page query gets the keyset bounds.
func (w *where) clone() *where {
	return &where{
		clauses: append([]string(nil), w.clauses...),
		args:    append([]any(nil), w.args...),
	}
}

// escapeLike makes s match literally inside a LIKE/ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
