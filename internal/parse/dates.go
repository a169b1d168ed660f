package parse

import (
	"regexp"
	"time"
)

// datePattern pairs a find-regex with the time layouts it can parse.
// Patterns are tried in order; the first one that matches a line wins.
type datePattern struct {
	re      *regexp.Regexp
	layouts []string
}

var datePatterns = []datePattern{
	// M/D/YYYY and M/D/YY
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2,4})\b`),
		[]string{"1/2/2006", "01/02/2006", "1/2/06", "01/02/06"}},
	// M-D-YYYY
	{regexp.MustCompile(`\b(\d{1,2}-\d{1,2}-\d{4})\b`),
		[]string{"1-2-2006", "01-02-2006"}},
	// YYYY-MM-DD
	{regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
		[]string{"2006-01-02"}},
}

// findDate returns the first date found in line along with its raw matched
// substring. Returns ("", nil) when no pattern matches or parsing fails.
func findDate(line string) (string, *time.Time) {
	for _, p := range datePatterns {
		m := p.re.FindString(line)
		if m == "" {
			continue
		}
		for _, layout := range p.layouts {
			if t, err := time.Parse(layout, m); err == nil {
				return m, &t
			}
		}
	}
	return "", nil
}

// stripDates removes every date-pattern match from line.
func stripDates(line string) string {
	for _, p := range datePatterns {
		line = p.re.ReplaceAllString(line, " ")
	}
	return line
}

// sameDay reports whether two dates fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
