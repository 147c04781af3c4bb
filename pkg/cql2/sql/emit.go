package sql

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/robert-malhotra/go-stac-client/pkg/cql2"
)

const dateLayout = "2006-01-02"

// ToSQL translates expr into dialect-specific SQL text, per §4.9's
// two-stage design: translate to a SQL AST, then render (with an
// optional DuckDB post-pass).
func ToSQL(expr cql2.Expr, opts Options) (string, error) {
	node, err := translate(expr, opts)
	if err != nil {
		return "", err
	}
	if opts.Dialect == DuckDB {
		node = rewriteDuckDB(node)
	}
	return node.Render(), nil
}

func translate(e cql2.Expr, opts Options) (Node, error) {
	switch v := e.(type) {
	case cql2.Bool:
		return BoolLit(v), nil
	case cql2.Float:
		return NumLit(v), nil
	case cql2.Literal:
		return StrLit(v), nil
	case cql2.Null:
		return NullLit{}, nil
	case *cql2.Property:
		return resolveProperty(v.Name, opts)
	case *cql2.Array:
		elems := make([]Node, len(v.Items))
		for i, it := range v.Items {
			n, err := translate(it, opts)
			if err != nil {
				return nil, err
			}
			elems[i] = n
		}
		return ArrayLit{Elems: elems}, nil
	case *cql2.BBox:
		args := make([]Node, len(v.Values))
		for i, it := range v.Values {
			n, err := translate(it, opts)
			if err != nil {
				return nil, err
			}
			args[i] = n
		}
		return Call{Name: "st_makeenvelope", Args: args}, nil
	case *cql2.Geometry:
		return translateGeometry(v)
	case *cql2.Date:
		inner, err := translate(v.Child, opts)
		if err != nil {
			return nil, err
		}
		return Cast{Inner: inner, Type: "DATE"}, nil
	case *cql2.Timestamp:
		inner, err := translate(v.Child, opts)
		if err != nil {
			return nil, err
		}
		return Cast{Inner: inner, Type: "TIMESTAMP WITH TIME ZONE"}, nil
	case cql2.IntervalOpen:
		return NullLit{}, nil
	case *cql2.Interval:
		start, err := translate(v.Start, opts)
		if err != nil {
			return nil, err
		}
		end, err := translate(v.End, opts)
		if err != nil {
			return nil, err
		}
		return ArrayLit{Elems: []Node{start, end}}, nil
	case *cql2.Operation:
		return translateOperation(v, opts)
	default:
		return nil, fmt.Errorf("sql: cannot translate %T", e)
	}
}

func translateGeometry(g *cql2.Geometry) (Node, error) {
	if g.WKT != "" {
		wkt, err := g.ToWKT()
		if err != nil {
			return nil, err
		}
		return Call{Name: "st_geomfromtext", Args: []Node{StrLit(wkt)}}, nil
	}
	v, err := g.ToGeoJSONValue()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("sql: marshal geometry: %w", err)
	}
	return Call{Name: "st_geomfromgeojson", Args: []Node{StrLit(raw)}}, nil
}

func translateArgs(args []cql2.Expr, opts Options) ([]Node, error) {
	out := make([]Node, len(args))
	for i, a := range args {
		n, err := translate(a, opts)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func translateOperation(op *cql2.Operation, opts Options) (Node, error) {
	switch op.Op {
	case "and", "or":
		terms, err := translateArgs(op.Args, opts)
		if err != nil {
			return nil, err
		}
		if op.Op == "and" {
			return And{Terms: terms}, nil
		}
		return Or{Terms: terms}, nil
	case "not":
		inner, err := translate(op.Args[0], opts)
		if err != nil {
			return nil, err
		}
		return UnaryOp{Op: "NOT", Operand: inner}, nil
	case "isnull":
		inner, err := translate(op.Args[0], opts)
		if err != nil {
			return nil, err
		}
		return IsNull{Operand: inner}, nil
	case "between":
		args, err := translateArgs(op.Args, opts)
		if err != nil {
			return nil, err
		}
		return Between{X: args[0], Lo: args[1], Hi: args[2]}, nil
	case "like":
		args, err := translateArgs(op.Args, opts)
		if err != nil {
			return nil, err
		}
		return BinOp{Op: "LIKE", Left: args[0], Right: args[1]}, nil
	case "in":
		left, err := translate(op.Args[0], opts)
		if err != nil {
			return nil, err
		}
		arr, err := translate(op.Args[1], opts)
		if err != nil {
			return nil, err
		}
		return AnyOp{Left: left, Array: arr}, nil
	case "casei":
		inner, err := translate(op.Args[0], opts)
		if err != nil {
			return nil, err
		}
		return Call{Name: "lower", Args: []Node{inner}}, nil
	case "accenti":
		inner, err := translate(op.Args[0], opts)
		if err != nil {
			return nil, err
		}
		return Call{Name: "strip_accents", Args: []Node{inner}}, nil
	case "=", "<>", "<", "<=", ">", ">=", "+", "-", "*", "/", "%":
		args, err := translateArgs(op.Args, opts)
		if err != nil {
			return nil, err
		}
		return BinOp{Op: op.Op, Left: args[0], Right: args[1]}, nil
	case "^":
		args, err := translateArgs(op.Args, opts)
		if err != nil {
			return nil, err
		}
		return Call{Name: "power", Args: args}, nil
	case "a_contains":
		return arrayBinOp(op, opts, "@>")
	case "a_containedby":
		return arrayBinOp(op, opts, "<@")
	case "a_overlaps":
		return arrayBinOp(op, opts, "&&")
	case "a_equals":
		return arrayBinOp(op, opts, "=")
	}
	if strings.HasPrefix(op.Op, "s_") {
		args, err := translateArgs(op.Args, opts)
		if err != nil {
			return nil, err
		}
		return Call{Name: "st_" + strings.TrimPrefix(op.Op, "s_"), Args: args}, nil
	}
	if isTemporalOp(op.Op) {
		if len(op.Args) != 2 {
			return nil, fmt.Errorf("sql: %s: invalid number of arguments: got %d, want 2", op.Op, len(op.Args))
		}
		return temporalSQL(op.Args[0], op.Args[1], op.Op, opts)
	}
	return resolveFunctionCall(op, opts)
}

func arrayBinOp(op *cql2.Operation, opts Options, sqlOp string) (Node, error) {
	args, err := translateArgs(op.Args, opts)
	if err != nil {
		return nil, err
	}
	return BinOp{Op: sqlOp, Left: args[0], Right: args[1]}, nil
}

func resolveProperty(name string, opts Options) (Node, error) {
	if opts.Resolver != nil {
		if frag, ok := opts.Resolver.Resolve(name, KindProperty); ok {
			return spliceFragment(frag)
		}
	}
	return Ident(name), nil
}

func resolveFunctionCall(op *cql2.Operation, opts Options) (Node, error) {
	if opts.Resolver != nil {
		if frag, ok := opts.Resolver.Resolve(op.Op, KindFunction); ok {
			return spliceFragment(frag)
		}
	}
	args, err := translateArgs(op.Args, opts)
	if err != nil {
		return nil, err
	}
	return Call{Name: op.Op, Args: args}, nil
}

// spliceFragment implements §4.9's "the fragment is parsed as a SQL
// expression and spliced into the SQL AST". This package has no
// general-purpose multi-dialect SQL expression parser available (see
// ast.go's package doc), so a resolver fragment is treated as a
// trusted, already-valid SQL expression and spliced in verbatim; only
// the empty-fragment case is rejected as "unparsable".
func spliceFragment(frag string) (Node, error) {
	trimmed := strings.TrimSpace(frag)
	if trimmed == "" {
		return nil, fmt.Errorf("sql: operation error: empty resolver fragment")
	}
	return Raw(trimmed), nil
}

var temporalOps = map[string]bool{
	"t_before": true, "t_after": true, "t_meets": true, "t_metby": true,
	"t_overlaps": true, "t_overlappedby": true, "t_starts": true, "t_startedby": true,
	"t_during": true, "t_contains": true, "t_finishes": true, "t_finishedby": true,
	"t_equals": true, "t_disjoint": true, "t_intersects": true, "anyinteracts": true,
}

func isTemporalOp(op string) bool { return temporalOps[op] }

// invertedTemporal maps non-primitive Allen relations to their
// primitive with swapped arguments, mirroring pkg/cql2's own table
// (unexported there, so duplicated here for the SQL emitter).
var invertedTemporal = map[string]string{
	"t_after":        "t_before",
	"t_metby":        "t_meets",
	"t_overlappedby": "t_overlaps",
	"t_startedby":    "t_starts",
	"t_contains":     "t_during",
	"t_finishedby":   "t_finishes",
}

// sqlInstant is the SQL-AST analogue of pkg/cql2's internal `instant`:
// a half-open [start, end) projection of a temporal expression, built
// from Nodes instead of time.Time so it can be rendered without ever
// evaluating the expression.
type sqlInstant struct {
	start, end         Node
	openStart, openEnd bool
}

func projectRangeSQL(e cql2.Expr, opts Options) (*sqlInstant, error) {
	switch v := e.(type) {
	case *cql2.Date:
		return projectDateLikeSQL(v.Child, opts, "DATE")
	case *cql2.Timestamp:
		return projectDateLikeSQL(v.Child, opts, "TIMESTAMP WITH TIME ZONE")
	case *cql2.Interval:
		return projectIntervalSQL(v, opts)
	case *cql2.Property:
		node, err := resolveProperty(v.Name, opts)
		if err != nil {
			return nil, err
		}
		return &sqlInstant{start: node, end: node}, nil
	default:
		return nil, fmt.Errorf("sql: cannot project %T as a temporal value", e)
	}
}

// projectDateLikeSQL handles the Date/Timestamp constructors' single
// Literal-or-Property child. A Date child projects to a full calendar
// day [d, d+1 day); a Timestamp child projects to the zero-width
// instant [t, t].
func projectDateLikeSQL(child cql2.Expr, opts Options, sqlType string) (*sqlInstant, error) {
	switch v := child.(type) {
	case cql2.Literal:
		start := Cast{Inner: StrLit(v), Type: sqlType}
		if sqlType == "DATE" {
			end := BinOp{Op: "+", Left: start, Right: Raw("INTERVAL '1 day'")}
			return &sqlInstant{start: start, end: end}, nil
		}
		return &sqlInstant{start: start, end: start}, nil
	case *cql2.Property:
		node, err := resolveProperty(v.Name, opts)
		if err != nil {
			return nil, err
		}
		return &sqlInstant{start: node, end: node}, nil
	default:
		return nil, fmt.Errorf("sql: date/timestamp child must be a literal or property, got %T", child)
	}
}

func projectIntervalSQL(iv *cql2.Interval, opts Options) (*sqlInstant, error) {
	out := &sqlInstant{}
	if _, ok := iv.Start.(cql2.IntervalOpen); ok {
		out.openStart = true
	} else {
		s, err := instantEndpointSQL(iv.Start, opts)
		if err != nil {
			return nil, err
		}
		out.start = s.start
	}
	if _, ok := iv.End.(cql2.IntervalOpen); ok {
		out.openEnd = true
	} else {
		s, err := instantEndpointSQL(iv.End, opts)
		if err != nil {
			return nil, err
		}
		out.end = s.end
	}
	return out, nil
}

func instantEndpointSQL(e cql2.Expr, opts Options) (*sqlInstant, error) {
	switch v := e.(type) {
	case *cql2.Date:
		return projectDateLikeSQL(v.Child, opts, "DATE")
	case *cql2.Timestamp:
		return projectDateLikeSQL(v.Child, opts, "TIMESTAMP WITH TIME ZONE")
	case cql2.Literal:
		s := string(v)
		if _, err := time.Parse(dateLayout, s); err == nil {
			start := Cast{Inner: StrLit(s), Type: "DATE"}
			return &sqlInstant{start: start, end: BinOp{Op: "+", Left: start, Right: Raw("INTERVAL '1 day'")}}, nil
		}
		ts := Cast{Inner: StrLit(s), Type: "TIMESTAMP WITH TIME ZONE"}
		return &sqlInstant{start: ts, end: ts}, nil
	case *cql2.Property:
		node, err := resolveProperty(v.Name, opts)
		if err != nil {
			return nil, err
		}
		return &sqlInstant{start: node, end: node}, nil
	default:
		return nil, fmt.Errorf("sql: interval endpoint must be a date/timestamp literal or property, got %T", e)
	}
}

// temporalSQL implements §4.2's sixteen Allen-style relations inline
// against the start/end projections of each side, matching §4.9's
// "temporal operators are expanded inline ... exactly as in §4.2"
// instruction and pkg/cql2's own temporalOp formulas.
func temporalSQL(lhs, rhs cql2.Expr, op string, opts Options) (Node, error) {
	if primitive, ok := invertedTemporal[op]; ok {
		return temporalSQL(rhs, lhs, primitive, opts)
	}
	a, err := projectRangeSQL(lhs, opts)
	if err != nil {
		return nil, err
	}
	b, err := projectRangeSQL(rhs, opts)
	if err != nil {
		return nil, err
	}
	switch op {
	case "t_before":
		return sqlBefore(a.end, a.openEnd, b.start, b.openStart), nil
	case "t_meets":
		return sqlEqualAt(a.end, a.openEnd, b.start, b.openStart), nil
	case "t_overlaps":
		return joinAnd(
			sqlBefore(a.start, a.openStart, b.end, b.openEnd),
			sqlBefore(b.start, b.openStart, a.end, a.openEnd),
			sqlBefore(a.end, a.openEnd, b.end, b.openEnd),
		), nil
	case "t_starts":
		return joinAnd(
			sqlEqualAt(a.start, a.openStart, b.start, b.openStart),
			sqlBefore(a.end, a.openEnd, b.end, b.openEnd),
		), nil
	case "t_during":
		return joinAnd(
			sqlBefore(b.start, b.openStart, a.start, a.openStart),
			sqlBefore(a.end, a.openEnd, b.end, b.openEnd),
		), nil
	case "t_finishes":
		return joinAnd(
			sqlBefore(b.start, b.openStart, a.start, a.openStart),
			sqlEqualAt(a.end, a.openEnd, b.end, b.openEnd),
		), nil
	case "t_equals":
		return joinAnd(
			sqlEqualAt(a.start, a.openStart, b.start, b.openStart),
			sqlEqualAt(a.end, a.openEnd, b.end, b.openEnd),
		), nil
	case "t_disjoint":
		inner := joinAnd(
			sqlLte(a.start, a.openStart, b.end, b.openEnd),
			sqlGte(a.end, a.openEnd, b.start, b.openStart),
		)
		return UnaryOp{Op: "NOT", Operand: Paren{Inner: inner}}, nil
	case "t_intersects", "anyinteracts":
		return joinAnd(
			sqlLte(a.start, a.openStart, b.end, b.openEnd),
			sqlGte(a.end, a.openEnd, b.start, b.openStart),
		), nil
	default:
		return nil, fmt.Errorf("sql: operator %q is not implemented", op)
	}
}

// sqlBefore/sqlLte/sqlGte/sqlEqualAt mirror pkg/cql2's before/lte/gte/
// equalAt: an open endpoint never binds a comparison, so it folds to
// a literal boolean rather than a real comparison node.
func sqlBefore(t Node, tOpenEnd bool, u Node, uOpenStart bool) Node {
	if tOpenEnd || uOpenStart {
		return BoolLit(true)
	}
	return BinOp{Op: "<", Left: t, Right: u}
}

func sqlLte(t Node, tOpenStart bool, u Node, uOpenEnd bool) Node {
	if tOpenStart || uOpenEnd {
		return BoolLit(true)
	}
	return BinOp{Op: "<=", Left: t, Right: u}
}

func sqlGte(t Node, tOpenEnd bool, u Node, uOpenStart bool) Node {
	if tOpenEnd || uOpenStart {
		return BoolLit(true)
	}
	return BinOp{Op: ">=", Left: t, Right: u}
}

func sqlEqualAt(t Node, openA bool, u Node, openB bool) Node {
	if openA || openB {
		return BoolLit(openA == openB)
	}
	return BinOp{Op: "=", Left: t, Right: u}
}

// joinAnd combines terms with AND, folding away literal TRUE terms
// (an open endpoint made that comparison vacuously true) and
// short-circuiting to FALSE if any term is a literal FALSE.
func joinAnd(terms ...Node) Node {
	kept := make([]Node, 0, len(terms))
	for _, t := range terms {
		if b, ok := t.(BoolLit); ok {
			if !bool(b) {
				return BoolLit(false)
			}
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return BoolLit(true)
	}
	return And{Terms: kept}
}
