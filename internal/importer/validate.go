package importer

import (
	"fmt"
	"strings"

	"github.com/giotroni/DB-VP/internal/schema"
)

// Validation is the result of reconciling parsed file headers against a
// table's canonical column list.
type Validation struct {
	// Fatal means the table cannot be imported: the table is unknown or
	// the primary key column is absent from the headers.
	Fatal   bool
	Message string

	// MissingColumns are schema columns absent from the file. They receive
	// default or empty values downstream. Advisory only.
	MissingColumns []string

	// ExtraColumns are file headers the schema does not know. They are
	// ignored downstream. Advisory only.
	ExtraColumns []string
}

// ValidateHeaders reconciles headers against the registered schema for
// tableName. Header matching is case-insensitive.
func ValidateHeaders(tableName string, headers []string) Validation {
	t, ok := schema.Get(tableName)
	if !ok {
		return Validation{Fatal: true, Message: fmt.Sprintf("unknown table %q", tableName)}
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.ToLower(h)] = true
	}

	pk := t.PrimaryKey()
	if !present[strings.ToLower(pk.Name)] {
		return Validation{
			Fatal:   true,
			Message: fmt.Sprintf("primary key column %q not found in file headers", pk.Name),
		}
	}

	var v Validation
	for _, c := range t.Columns {
		if !present[strings.ToLower(c.Name)] {
			v.MissingColumns = append(v.MissingColumns, c.Name)
		}
	}

	known := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		known[strings.ToLower(c.Name)] = true
	}
	for _, h := range headers {
		if h != "" && !known[strings.ToLower(h)] {
			v.ExtraColumns = append(v.ExtraColumns, h)
		}
	}

	return v
}
