package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/giotroni/DB-VP/internal/schema"
	"github.com/giotroni/DB-VP/internal/tabular"
)

// ZeroDateSentinel is the legacy "no date" literal mapped to SQL NULL.
const ZeroDateSentinel = "0000-00-00"

// dateLayouts are tried in order; the first successful parse wins.
// Day-first layouts come before month-first, matching the source data.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
}

// numericRegex validates a string as numeric after currency cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TransformRow applies each column's transform chain to one data row and
// returns the cell values keyed by canonical column name. A nil value means
// SQL NULL. Columns absent from the file get the empty string as input, so
// enum defaults still apply. The map is independent of header order.
func TransformRow(t schema.Table, idx tabular.HeaderIndex, row []string) (map[string]any, error) {
	out := make(map[string]any, len(t.Columns))

	for _, col := range t.Columns {
		raw := ""
		if pos, ok := idx[strings.ToLower(col.Name)]; ok && pos < len(row) {
			raw = strings.TrimSpace(row[pos])
		}

		v, err := applyChain(col, raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		out[col.Name] = v
	}

	return out, nil
}

// applyChain runs a column's resolved transform sequence. Once a transform
// yields NULL the rest of the chain is skipped.
func applyChain(col schema.ColumnSpec, raw string) (any, error) {
	var v any = raw

	for _, tr := range col.Chain {
		s, ok := v.(string)
		if !ok {
			break
		}

		switch tr.Kind {
		case schema.TransformSecretHash:
			h, err := hashSecret(s)
			if err != nil {
				return nil, err
			}
			v = h

		case schema.TransformEnumDefault:
			if s == "" {
				v = tr.Default
			}

		case schema.TransformDateNullify:
			if s == "" || s == ZeroDateSentinel {
				v = nil
			}

		case schema.TransformMonetaryCoerce:
			v = coerceMonetary(s)

		case schema.TransformDateNormalize:
			if s != "" {
				v = normalizeDate(s)
			}
		}
	}

	return v, nil
}

// hashSecret produces a salted one-way hash of a credential value.
// Empty input passes through empty so absent secrets stay absent.
func hashSecret(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(h), nil
}

// VerifySecret reports whether plaintext matches a stored secret hash.
func VerifySecret(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// coerceMonetary parses a monetary cell into a float64, stripping currency
// symbols, thousands separators and the accounting negative form first.
// Anything still unparseable coerces to 0.
func coerceMonetary(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// normalizeDate rewrites a recognized date to YYYY-MM-DD. Unrecognized
// values pass through unchanged; a failed parse is never an error.
func normalizeDate(s string) string {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
