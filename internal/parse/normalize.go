package parse

import (
	"regexp"
	"strings"

	"github.com/gyeh/billaudit/internal/extract"
)

var (
	multiSpace    = regexp.MustCompile(`\s+`)
	spacedDollar  = regexp.MustCompile(`\$\s+(\d)`)
	trailingColon = regexp.MustCompile(`(\d):(\s|$)`)
)

// normalizeLines splits recognized text on line breaks, trims whitespace,
// drops empty lines, and repairs common OCR artifacts: the currency-symbol
// misread, stray spacing between the symbol and its digits, and colons the
// engine produces in place of trailing whitespace after numbers.
func normalizeLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = extract.NormalizeCurrency(line)
		line = spacedDollar.ReplaceAllString(line, "$$$1")
		line = trailingColon.ReplaceAllString(line, "$1$2")
		line = multiSpace.ReplaceAllString(line, " ")
		out = append(out, line)
	}
	return out
}
