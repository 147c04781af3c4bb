package cql2

import "sort"

// TerminalOp is a leaf (non-boolean) operation extracted from a filter
// tree by ExtractTerminalOps: a comparison, predicate, or function-call
// operation, together with the property it targets, if one of its
// arguments is a bare *Property.
type TerminalOp struct {
	Op       string
	Property string
	Args     []Expr
}

// ExtractTerminalOps flattens a conjunctive filter tree into its leaf
// operations, the same shape a query planner needs to push per-property
// predicates down to an index or a column store rather than evaluating
// the whole tree row by row. Only top-level `and` composition is
// supported, matching conjunctive normal form; an `or` at the top or
// directly under an `and` is rejected, since a disjunction of terms
// cannot be planned against a single property uniformly. Any other
// operation is returned whole as one terminal op without inspecting its
// arguments, so an `or` nested inside it (for example under `not`) is
// not detected.
func ExtractTerminalOps(expr Expr) ([]TerminalOp, error) {
	if expr == nil {
		return nil, nil
	}
	op, ok := expr.(*Operation)
	if !ok {
		return nil, unsupportedPlanError("expression %T has no operator to plan against", expr)
	}
	switch op.Op {
	case "and":
		var ops []TerminalOp
		for _, child := range op.Args {
			childOps, err := ExtractTerminalOps(child)
			if err != nil {
				return nil, err
			}
			ops = append(ops, childOps...)
		}
		return ops, nil
	case "or":
		return nil, unsupportedPlanError("ExtractTerminalOps: only conjunctive (and) composition can be planned, got or")
	default:
		return []TerminalOp{{Op: op.Op, Property: firstProperty(op.Args), Args: op.Args}}, nil
	}
}

func firstProperty(args []Expr) string {
	for _, a := range args {
		if p, ok := a.(*Property); ok {
			return p.Name
		}
	}
	return ""
}

// GroupByProperty groups terminal operations by the property each one
// targets. Operations with no recognizable property argument (e.g. a
// bare function call) are grouped under "".
func GroupByProperty(ops []TerminalOp) map[string][]TerminalOp {
	result := make(map[string][]TerminalOp)
	for _, op := range ops {
		result[op.Property] = append(result[op.Property], op)
	}
	return result
}

// GroupByOp groups terminal operations by their operator name.
func GroupByOp(ops []TerminalOp) map[string][]TerminalOp {
	result := make(map[string][]TerminalOp)
	for _, op := range ops {
		result[op.Op] = append(result[op.Op], op)
	}
	return result
}

// Properties returns the sorted, de-duplicated set of property names
// referenced across ops. A host embedding the engine uses this to
// decide which indexes or columns a filter will actually touch before
// ever building SQL or walking records.
func Properties(ops []TerminalOp) []string {
	seen := make(map[string]bool, len(ops))
	var names []string
	for _, op := range ops {
		if op.Property == "" || seen[op.Property] {
			continue
		}
		seen[op.Property] = true
		names = append(names, op.Property)
	}
	sort.Strings(names)
	return names
}
