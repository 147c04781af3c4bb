package sql

// rewriteDuckDB implements §4.9's DuckDB post-pass: Postgres-style
// array operators become DuckDB list functions, everything else is
// shared with the default dialect.
func rewriteDuckDB(n Node) Node {
	switch v := n.(type) {
	case BinOp:
		left := rewriteDuckDB(v.Left)
		right := rewriteDuckDB(v.Right)
		switch v.Op {
		case "@>":
			return Call{Name: "list_has_all", Args: []Node{left, right}}
		case "<@":
			return Call{Name: "list_has_all", Args: []Node{right, left}}
		case "&&":
			return Call{Name: "list_has_any", Args: []Node{left, right}}
		default:
			return BinOp{Op: v.Op, Left: left, Right: right}
		}
	case And:
		return And{Terms: rewriteAll(v.Terms)}
	case Or:
		return Or{Terms: rewriteAll(v.Terms)}
	case UnaryOp:
		return UnaryOp{Op: v.Op, Operand: rewriteDuckDB(v.Operand)}
	case Paren:
		return Paren{Inner: rewriteDuckDB(v.Inner)}
	case IsNull:
		return IsNull{Operand: rewriteDuckDB(v.Operand)}
	case AnyOp:
		return AnyOp{Left: rewriteDuckDB(v.Left), Array: rewriteDuckDB(v.Array)}
	case ArrayLit:
		return ArrayLit{Elems: rewriteAll(v.Elems)}
	case Between:
		return Between{X: rewriteDuckDB(v.X), Lo: rewriteDuckDB(v.Lo), Hi: rewriteDuckDB(v.Hi)}
	case Call:
		return Call{Name: v.Name, Args: rewriteAll(v.Args)}
	case Cast:
		return Cast{Inner: rewriteDuckDB(v.Inner), Type: v.Type}
	default:
		// Raw, Ident, StrLit, NumLit, BoolLit, NullLit are leaves.
		return n
	}
}

func rewriteAll(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = rewriteDuckDB(n)
	}
	return out
}
