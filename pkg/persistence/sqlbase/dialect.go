package sqlbase

import (
	"strconv"
	"strings"
)

// Dialect captures the differences between the SQL engines sqlbase runs on.
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2, ...) instead of '?'.
	NumberedPlaceholders bool
}

var (
	Postgres = Dialect{Name: "postgres", NumberedPlaceholders: true}
	SQLite   = Dialect{Name: "sqlite"}
)

// Rebind rewrites '?' placeholders for the dialect. Queries must not contain
// literal question marks.
func (d Dialect) Rebind(query string) string {
	if !d.NumberedPlaceholders {
		return query
	}

	var builder strings.Builder

	builder.Grow(len(query) + 8)

	n := 0

	for _, r := range query {
		if r != '?' {
			builder.WriteRune(r)

			continue
		}

		n++
		builder.WriteByte('$')
		builder.WriteString(strconv.Itoa(n))
	}

	return builder.String()
}
