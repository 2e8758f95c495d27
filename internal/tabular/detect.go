// Package tabular parses delimited text files into an in-memory table:
// a header row plus width-normalized data rows. The field separator is
// detected per file rather than assumed from the extension.
package tabular

import "strings"

// delimiters is the candidate set, in tie-break order.
var delimiters = []rune{',', ';', '\t', '|'}

// DetectDelimiter picks the field separator by counting candidate
// occurrences in the sample line (normally the file's first line). The
// strictly highest count wins; ties and lines containing no candidate at
// all fall back to the comma.
func DetectDelimiter(sample string) rune {
	best := ','
	bestCount := 0
	tied := false
	for _, d := range delimiters {
		n := strings.Count(sample, string(d))
		switch {
		case n > bestCount:
			best, bestCount, tied = d, n, false
		case n == bestCount && n > 0:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return ','
	}
	return best
}
