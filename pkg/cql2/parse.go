package cql2

import (
	"os"
	"strings"
)

// ParseText parses cql2-text into an Expr.
func ParseText(text string) (Expr, error) {
	return parseTextExpr(text)
}

// Parse format-sniffs the input: after skipping leading whitespace, a
// string beginning with '{' is treated as cql2-json, otherwise
// cql2-text, per §4.5.
func Parse(text string) (Expr, error) {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	if strings.HasPrefix(trimmed, "{") {
		return ParseJSON(text)
	}
	return ParseText(text)
}

// ParseFile reads path and parses its contents with Parse.
func ParseFile(path string) (Expr, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError(err)
	}
	return Parse(string(data))
}

// ToText renders expr as canonical cql2-text.
func ToText(e Expr) (string, error) {
	return SerializeText(e)
}
