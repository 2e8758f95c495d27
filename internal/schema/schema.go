// Package schema defines the seven import target tables: their canonical
// column lists, database column names, and per-column transform chains.
// Definitions are registered once at init and never mutated afterwards.
package schema

import (
	"strings"
	"unicode"
)

// TransformKind identifies a cell-level transformation applied during import.
type TransformKind int

const (
	// TransformIdentity passes the value through unchanged.
	TransformIdentity TransformKind = iota

	// TransformSecretHash replaces a non-empty value with a salted one-way hash.
	TransformSecretHash

	// TransformEnumDefault substitutes a fixed literal for empty values.
	TransformEnumDefault

	// TransformDateNullify maps empty strings and the zero-date sentinel to NULL.
	TransformDateNullify

	// TransformMonetaryCoerce parses the value as a number, defaulting to 0.
	TransformMonetaryCoerce

	// TransformDateNormalize rewrites recognized date formats to YYYY-MM-DD.
	TransformDateNormalize
)

// String returns a stable lowercase name for JSON output and logs.
func (k TransformKind) String() string {
	switch k {
	case TransformSecretHash:
		return "secret_hash"
	case TransformEnumDefault:
		return "enum_default"
	case TransformDateNullify:
		return "date_nullify"
	case TransformMonetaryCoerce:
		return "monetary_coerce"
	case TransformDateNormalize:
		return "date_normalize"
	default:
		return "identity"
	}
}

// Transform pairs a kind with its parameter.
// Only EnumDefault carries one (the default literal).
type Transform struct {
	Kind    TransformKind
	Default string
}

// ColumnSpec describes a single column of an import target.
type ColumnSpec struct {
	// Name is the canonical header name as it appears in input files.
	Name string

	// DBColumn is the SQL column name. Derived from Name at registration
	// when left empty.
	DBColumn string

	// Transform is the explicit table+column transform, if any.
	Transform Transform

	// Chain is the full transform sequence for this column: the explicit
	// transform followed by the name-pattern transforms. Resolved once at
	// registration so the row loop never matches column names.
	Chain []Transform
}

// Table is the immutable definition of one import target. Name doubles as
// the SQL table name and the input file stem.
type Table struct {
	Name    string
	Label   string
	Columns []ColumnSpec
}

// PrimaryKey returns the key column. By convention it is always Columns[0].
func (t Table) PrimaryKey() ColumnSpec {
	return t.Columns[0]
}

// Headers returns the canonical header names in column order.
func (t Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// DBColumns returns the SQL column names in column order.
func (t Table) DBColumns() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.DBColumn
	}
	return out
}

// Column looks up a column spec by canonical name, case-insensitively.
func (t Table) Column(name string) (ColumnSpec, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// monetaryKeywords mark columns that hold money amounts. A column whose
// lowercased name contains any of them is coerced to numeric on import.
var monetaryKeywords = []string{"amount", "rate", "expense", "value", "cost", "commission"}

func isMonetaryColumn(name string) bool {
	n := strings.ToLower(name)
	for _, kw := range monetaryKeywords {
		if strings.Contains(n, kw) {
			return true
		}
	}
	return false
}

// isDateColumn reports whether a column name marks a date field. The
// canonical headers put the keyword at either end (Date, OpenDate,
// PaymentDueDate) or lead with "effective" (EffectiveFrom).
func isDateColumn(name string) bool {
	n := strings.ToLower(name)
	return strings.HasPrefix(n, "date") || strings.HasSuffix(n, "date") || strings.HasPrefix(n, "effective")
}

// resolveChain builds a column's transform sequence: the explicit transform
// first, then the transforms derived from the column name.
func resolveChain(spec ColumnSpec) []Transform {
	var chain []Transform
	if spec.Transform.Kind != TransformIdentity {
		chain = append(chain, spec.Transform)
	}
	if isMonetaryColumn(spec.Name) {
		chain = append(chain, Transform{Kind: TransformMonetaryCoerce})
	}
	if isDateColumn(spec.Name) {
		chain = append(chain, Transform{Kind: TransformDateNormalize})
	}
	return chain
}

// toDBColumn converts a canonical header name to a snake_case SQL identifier.
// Acronym runs collapse: TaxID becomes tax_id, not tax_i_d.
func toDBColumn(name string) string {
	rs := []rune(name)
	var b strings.Builder
	b.Grow(len(rs) + 4)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1]))
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1]) && i > 0
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
