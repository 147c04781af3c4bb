package cql2

import "strconv"

// parseFloatLiteral parses the DECIMAL/Unsigned terminals of §4.4. Both
// reduce to Float; see SPEC_FULL.md's Open Question (a) note on why
// there is no separate Integer variant.
func parseFloatLiteral(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return f, nil
}
