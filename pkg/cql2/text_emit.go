package cql2

import (
	"regexp"
	"strconv"
	"strings"
)

// bareIdentRe is §4.8's emitter rule: an identifier is printed bare
// only if it matches [A-Za-z_][A-Za-z0-9_]*; this is narrower than the
// parser's lexical Identifier terminal (which also accepts ':'), so a
// STAC extension property like eo:cloud_cover round-trips through a
// quoted identifier on output.
var bareIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SerializeText renders expr as canonical cql2-text, per §4.8. It is
// the tree's canonical string form: used directly by ToText and,
// via Equal/sortExprsByText, as the structural-equality key for
// reduction's boolean folding (§4.7) and for the package's Clone/Equal
// round-trip tests.
func SerializeText(expr Expr) (string, error) {
	var b strings.Builder
	if err := emitText(&b, expr); err != nil {
		return "", err
	}
	return b.String(), nil
}

func emitText(b *strings.Builder, e Expr) error {
	switch v := e.(type) {
	case Bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
		return nil
	case Float:
		b.WriteString(formatTextNumber(float64(v)))
		return nil
	case Literal:
		b.WriteString(quoteTextString(string(v)))
		return nil
	case Null:
		b.WriteString("NULL")
		return nil
	case *Property:
		b.WriteString(quoteTextIdent(v.Name))
		return nil
	case *Array:
		b.WriteString("(")
		for i, it := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := emitText(b, it); err != nil {
				return err
			}
		}
		b.WriteString(")")
		return nil
	case *BBox:
		b.WriteString("BBOX(")
		for i, it := range v.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := emitText(b, it); err != nil {
				return err
			}
		}
		b.WriteString(")")
		return nil
	case *Geometry:
		wkt, err := v.toWKT()
		if err != nil {
			return err
		}
		b.WriteString(wkt)
		return nil
	case *Date:
		b.WriteString("DATE(")
		if err := emitText(b, v.Child); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case *Timestamp:
		b.WriteString("TIMESTAMP(")
		if err := emitText(b, v.Child); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case IntervalOpen:
		b.WriteString("..")
		return nil
	case *Interval:
		b.WriteString("INTERVAL(")
		if err := emitText(b, v.Start); err != nil {
			return err
		}
		b.WriteString(", ")
		if err := emitText(b, v.End); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case *Operation:
		return emitOperationText(b, v)
	default:
		return coercionError("cannot serialize %T to text", e)
	}
}

func emitOperationText(b *strings.Builder, op *Operation) error {
	if want, ok := fixedArity[op.Op]; ok && len(op.Args) != want {
		return arityError(op.Op, len(op.Args), strconv.Itoa(want))
	}

	switch op.Op {
	case "and", "or":
		joiner := " AND "
		if op.Op == "or" {
			joiner = " OR "
		}
		b.WriteString("(")
		for i, a := range op.Args {
			if i > 0 {
				b.WriteString(joiner)
			}
			if err := emitText(b, a); err != nil {
				return err
			}
		}
		b.WriteString(")")
		return nil
	case "not":
		b.WriteString("(NOT ")
		if err := emitText(b, op.Args[0]); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case "isnull":
		b.WriteString("(")
		if err := emitText(b, op.Args[0]); err != nil {
			return err
		}
		b.WriteString(" IS NULL)")
		return nil
	case "between":
		b.WriteString("(")
		if err := emitText(b, op.Args[0]); err != nil {
			return err
		}
		b.WriteString(" BETWEEN ")
		if err := emitText(b, op.Args[1]); err != nil {
			return err
		}
		b.WriteString(" AND ")
		if err := emitText(b, op.Args[2]); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case "like":
		b.WriteString("(")
		if err := emitText(b, op.Args[0]); err != nil {
			return err
		}
		b.WriteString(" LIKE ")
		if err := emitText(b, op.Args[1]); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case "in":
		b.WriteString("(")
		if err := emitText(b, op.Args[0]); err != nil {
			return err
		}
		b.WriteString(" IN ")
		if err := emitText(b, op.Args[1]); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case "=", "<>", "<", "<=", ">", ">=", "^":
		if len(op.Args) != 2 {
			return arityError(op.Op, len(op.Args), "2")
		}
		b.WriteString("(")
		if err := emitText(b, op.Args[0]); err != nil {
			return err
		}
		b.WriteString(" ")
		b.WriteString(op.Op)
		b.WriteString(" ")
		if err := emitText(b, op.Args[1]); err != nil {
			return err
		}
		b.WriteString(")")
		return nil
	case "+", "-", "*", "/", "%":
		if len(op.Args) != 2 {
			return arityError(op.Op, len(op.Args), "2")
		}
		if err := emitText(b, op.Args[0]); err != nil {
			return err
		}
		b.WriteString(" ")
		b.WriteString(op.Op)
		b.WriteString(" ")
		return emitText(b, op.Args[1])
	default:
		b.WriteString(op.Op)
		b.WriteString("(")
		for i, a := range op.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := emitText(b, a); err != nil {
				return err
			}
		}
		b.WriteString(")")
		return nil
	}
}

func formatTextNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func quoteTextString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteTextIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if !bareIdentRe.MatchString(part) {
			parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
		}
	}
	return strings.Join(parts, ".")
}
