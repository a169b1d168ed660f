package extract

import (
	"regexp"
	"strconv"
)

// CodeKind distinguishes the two supported procedure code systems.
type CodeKind string

const (
	KindCPT   CodeKind = "CPT"
	KindHCPCS CodeKind = "HCPCS"
)

// Code is one procedure code found in a line, with its optional two-character
// modifier.
type Code struct {
	Value    string
	Kind     CodeKind
	Modifier string
}

var (
	// Hospital-bill convention: CPT printed with a leading zero as six
	// digits. The zero is stripped from the extracted code.
	leadingZeroCPT = regexp.MustCompile(`\b0(\d{5})(?:-([A-Z0-9]{2}))?\b`)

	plainCPT = regexp.MustCompile(`\b(\d{5})(?:-([A-Z0-9]{2}))?\b`)

	// HCPCS Level II: whitelisted section letter + four digits.
	hcpcsCode = regexp.MustCompile(`\b([ABCDEGHJKLMPQRSTV]\d{4})(?:-([A-Z0-9]{2}))?\b`)
)

// cptRanges are the published CPT numeric bands. A 5-digit candidate outside
// every band is not a procedure code.
var cptRanges = [][2]int{
	{100, 1999},   // anesthesia 00100-01999
	{10004, 69990}, // surgery
	{70010, 79999}, // radiology
	{80047, 89398}, // pathology and laboratory
	{90281, 99607}, // medicine (includes E&M 99201-99499)
}

// codeDenylist holds 5-digit strings that pass the range check but are almost
// always something else on a bill: ZIP codes and generic repeated digits.
var codeDenylist = map[string]struct{}{
	"10001": {}, "10002": {}, "10003": {}, "19103": {}, "30301": {},
	"60601": {}, "77001": {}, "90210": {}, "94102": {}, "98101": {},
	"11111": {}, "22222": {}, "33333": {}, "44444": {}, "55555": {},
	"66666": {}, "77777": {}, "88888": {}, "99999": {},
	"12345": {}, "54321": {},
}

// Codes returns the deduplicated, ordered procedure codes found in line.
// Leading-zero CPT is tried first; the plain 5-digit pattern runs only when
// that found nothing, so the same digits are never matched twice. HCPCS
// always runs.
func Codes(line string) []Code {
	var found []Code

	for _, m := range leadingZeroCPT.FindAllStringSubmatch(line, -1) {
		if c, ok := makeCPT(m[1], m[2]); ok {
			found = append(found, c)
		}
	}
	if len(found) == 0 {
		for _, m := range plainCPT.FindAllStringSubmatch(line, -1) {
			if c, ok := makeCPT(m[1], m[2]); ok {
				found = append(found, c)
			}
		}
	}
	for _, m := range hcpcsCode.FindAllStringSubmatch(line, -1) {
		found = append(found, Code{Value: m[1], Kind: KindHCPCS, Modifier: m[2]})
	}

	return dedupeCodes(found)
}

func makeCPT(digits, modifier string) (Code, bool) {
	if !validCPT(digits) {
		return Code{}, false
	}
	return Code{Value: digits, Kind: KindCPT, Modifier: modifier}, true
}

func validCPT(digits string) bool {
	if _, denied := codeDenylist[digits]; denied {
		return false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return false
	}
	for _, r := range cptRanges {
		if n >= r[0] && n <= r[1] {
			return true
		}
	}
	return false
}

// dedupeCodes removes exact duplicates (same code, kind and modifier) while
// preserving first-seen order.
func dedupeCodes(codes []Code) []Code {
	if len(codes) < 2 {
		return codes
	}
	seen := make(map[Code]struct{}, len(codes))
	out := codes[:0]
	for _, c := range codes {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
