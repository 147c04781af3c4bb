package cql2

import (
	"math"
	"strconv"
	"strings"
)

// --- leaf Reduce implementations ---

func (b Bool) Reduce(any) (Expr, error)         { return b, nil }
func (f Float) Reduce(any) (Expr, error)        { return f, nil }
func (l Literal) Reduce(any) (Expr, error)      { return l, nil }
func (n Null) Reduce(any) (Expr, error)         { return n, nil }
func (o IntervalOpen) Reduce(any) (Expr, error) { return o, nil }

// Reduce implements §4.7 step 1: property substitution. p is looked up
// by its dotted path first, then under "properties." + path; a miss
// leaves the reference unchanged (§6.4).
func (p *Property) Reduce(record any) (Expr, error) {
	if record == nil {
		return p, nil
	}
	if v, ok := lookupPath(record, p.Name); ok {
		return valueToExpr(v)
	}
	if v, ok := lookupPath(record, "properties."+p.Name); ok {
		return valueToExpr(v)
	}
	return p, nil
}

func lookupPath(record any, path string) (any, bool) {
	cur := record
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, exists := m[part]
		if !exists {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func (a *Array) Reduce(record any) (Expr, error) {
	items := make([]Expr, len(a.Items))
	for i, it := range a.Items {
		r, err := it.Reduce(record)
		if err != nil {
			return nil, err
		}
		items[i] = r
	}
	return &Array{Items: items}, nil
}

func (b *BBox) Reduce(record any) (Expr, error) {
	values := make([]Expr, len(b.Values))
	for i, v := range b.Values {
		r, err := v.Reduce(record)
		if err != nil {
			return nil, err
		}
		values[i] = r
	}
	return &BBox{Values: values}, nil
}

func (g *Geometry) Reduce(any) (Expr, error) { return g, nil }

func (d *Date) Reduce(record any) (Expr, error) {
	child, err := d.Child.Reduce(record)
	if err != nil {
		return nil, err
	}
	return &Date{Child: child}, nil
}

func (t *Timestamp) Reduce(record any) (Expr, error) {
	child, err := t.Child.Reduce(record)
	if err != nil {
		return nil, err
	}
	return &Timestamp{Child: child}, nil
}

func (i *Interval) Reduce(record any) (Expr, error) {
	start, err := i.Start.Reduce(record)
	if err != nil {
		return nil, err
	}
	end, err := i.End.Reduce(record)
	if err != nil {
		return nil, err
	}
	return &Interval{Start: start, End: end}, nil
}

// Reduce implements §4.7 steps 2-8 for Operation nodes: post-order
// recursion over Args, then operator-specific folding.
func (o *Operation) Reduce(record any) (Expr, error) {
	args := make([]Expr, len(o.Args))
	for i, a := range o.Args {
		r, err := a.Reduce(record)
		if err != nil {
			return nil, err
		}
		args[i] = r
	}

	if want, ok := fixedArity[o.Op]; ok && len(args) != want {
		return nil, arityError(o.Op, len(args), strconv.Itoa(want))
	}

	switch o.Op {
	case "and", "or":
		return foldBoolean(o.Op, args), nil
	case "not":
		if b, ok := args[0].(Bool); ok {
			return Bool(!b), nil
		}
		return &Operation{Op: "not", Args: args}, nil
	case "isnull":
		if _, isProp := args[0].(*Property); isProp {
			return &Operation{Op: "isnull", Args: args}, nil
		}
		if _, isOp := args[0].(*Operation); isOp {
			return &Operation{Op: "isnull", Args: args}, nil
		}
		_, isNull := args[0].(Null)
		return Bool(isNull), nil
	case "casei":
		if len(args) != 1 {
			return nil, arityError("casei", len(args), "1")
		}
		if lit, ok := args[0].(Literal); ok {
			return Literal(caseFold(string(lit))), nil
		}
		return &Operation{Op: "casei", Args: args}, nil
	case "accenti":
		if len(args) != 1 {
			return nil, arityError("accenti", len(args), "1")
		}
		if lit, ok := args[0].(Literal); ok {
			return Literal(accentFold(string(lit))), nil
		}
		return &Operation{Op: "accenti", Args: args}, nil
	case "between":
		if v, ok := foldBetween(args[0], args[1], args[2]); ok {
			return v, nil
		}
		return &Operation{Op: "between", Args: args}, nil
	case "in":
		if len(args) != 2 {
			return nil, arityError("in", len(args), "2")
		}
		if v, ok := foldIn(args[0], args[1]); ok {
			return v, nil
		}
		return &Operation{Op: "in", Args: args}, nil
	default:
		if len(args) == 2 {
			if v, ok := dispatchBinary(o.Op, args[0], args[1]); ok {
				return v, nil
			}
		}
		return &Operation{Op: o.Op, Args: args}, nil
	}
}

// foldBoolean implements §4.7 step 3.
func foldBoolean(op string, args []Expr) Expr {
	var flat []Expr
	for _, a := range args {
		if inner, ok := a.(*Operation); ok && inner.Op == op {
			flat = append(flat, inner.Args...)
		} else {
			flat = append(flat, a)
		}
	}

	shortCircuit := op == "or" // or short-circuits on true, and on false
	for _, a := range flat {
		if b, ok := a.(Bool); ok && bool(b) == shortCircuit {
			return Bool(shortCircuit)
		}
	}

	dropVal := true // and drops true, or drops false
	if op == "or" {
		dropVal = false
	}
	var kept []Expr
	for _, a := range flat {
		if b, ok := a.(Bool); ok && bool(b) == dropVal {
			continue
		}
		kept = append(kept, a)
	}

	kept = dedupExprs(sortExprsByText(kept))
	if len(kept) == 0 {
		return Bool(dropVal)
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &Operation{Op: op, Args: kept}
}

func dedupExprs(items []Expr) []Expr {
	var out []Expr
	for _, it := range items {
		dup := false
		for _, o := range out {
			if Equal(it, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	return out
}

// dispatchBinary implements §4.7 step 7's group-specific operators.
func dispatchBinary(op string, a, b Expr) (Expr, bool) {
	switch groupOf(op) {
	case groupArithmetic:
		af, aok := a.(Float)
		bf, bok := b.(Float)
		if !aok || !bok {
			return nil, false
		}
		v, ok := arithmetic(op, float64(af), float64(bf))
		if !ok {
			return nil, false
		}
		return Float(v), true
	case groupEquality:
		return compareEquality(op, a, b)
	case groupComparison:
		return compareOrdering(op, a, b)
	case groupSpatial:
		res, err := spatialOp(a, b, op)
		if err != nil {
			return nil, false
		}
		return res, true
	case groupTemporal:
		res, err := temporalOp(a, b, op)
		if err != nil {
			return nil, false
		}
		return res, true
	case groupArray:
		return arrayOp(op, a, b)
	case groupString:
		if op != "like" {
			return nil, false
		}
		al, aok := a.(Literal)
		bl, bok := b.(Literal)
		if !aok || !bok {
			return nil, false
		}
		return Bool(likeMatch(string(al), string(bl))), true
	default:
		return nil, false
	}
}

func arithmetic(op string, a, b float64) (float64, bool) {
	switch op {
	case "+":
		return a + b, true
	case "-":
		return a - b, true
	case "*":
		return a * b, true
	case "/":
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case "%":
		if b == 0 {
			return 0, false
		}
		return math.Mod(a, b), true
	case "^":
		return math.Pow(a, b), true
	default:
		return 0, false
	}
}

func compareEquality(op string, a, b Expr) (Expr, bool) {
	eq, ok := valuesEqual(a, b)
	if !ok {
		return nil, false
	}
	if op == "=" {
		return Bool(eq), true
	}
	return Bool(!eq), true
}

func valuesEqual(a, b Expr) (bool, bool) {
	switch av := a.(type) {
	case Float:
		bv, ok := b.(Float)
		if !ok {
			return false, false
		}
		return av == bv, true
	case Bool:
		bv, ok := b.(Bool)
		if !ok {
			return false, false
		}
		return av == bv, true
	case Literal:
		bv, ok := b.(Literal)
		if !ok {
			return false, false
		}
		return av == bv, true
	default:
		return false, false
	}
}

func compareOrdering(op string, a, b Expr) (Expr, bool) {
	var cmp int
	switch av := a.(type) {
	case Float:
		bv, ok := b.(Float)
		if !ok {
			return nil, false
		}
		switch {
		case av < bv:
			cmp = -1
		case av > bv:
			cmp = 1
		default:
			cmp = 0
		}
	case Literal:
		bv, ok := b.(Literal)
		if !ok {
			return nil, false
		}
		cmp = strings.Compare(string(av), string(bv))
	default:
		return nil, false
	}
	switch op {
	case "<":
		return Bool(cmp < 0), true
	case "<=":
		return Bool(cmp <= 0), true
	case ">":
		return Bool(cmp > 0), true
	case ">=":
		return Bool(cmp >= 0), true
	default:
		return nil, false
	}
}

// foldBetween implements §4.7 step 6.
func foldBetween(a, lo, hi Expr) (Expr, bool) {
	ge, ok1 := compareOrdering(">=", a, lo)
	le, ok2 := compareOrdering("<=", a, hi)
	if !ok1 || !ok2 {
		return nil, false
	}
	return Bool(bool(ge.(Bool)) && bool(le.(Bool))), true
}

// arrayOp projects both Array arguments to a set of strings and
// implements the four array operators, per §4.7 step 7's "Array over
// Array projected to set-of-strings" rule.
func arrayOp(op string, a, b Expr) (Expr, bool) {
	aArr, aok := a.(*Array)
	bArr, bok := b.(*Array)
	if !aok || !bok {
		return nil, false
	}
	aSet, ok1 := arrayToStringSet(aArr)
	bSet, ok2 := arrayToStringSet(bArr)
	if !ok1 || !ok2 {
		return nil, false
	}
	switch op {
	case "a_equals":
		return Bool(len(aSet) == len(bSet) && setContains(aSet, bSet)), true
	case "a_contains":
		return Bool(setContains(aSet, bSet)), true
	case "a_containedby":
		return Bool(setContains(bSet, aSet)), true
	case "a_overlaps":
		return Bool(setOverlaps(aSet, bSet)), true
	default:
		return nil, false
	}
}

func arrayToStringSet(a *Array) (map[string]bool, bool) {
	set := make(map[string]bool, len(a.Items))
	for _, it := range a.Items {
		s, ok := exprToComparableString(it)
		if !ok {
			return nil, false
		}
		set[s] = true
	}
	return set, true
}

func setContains(outer, inner map[string]bool) bool {
	for k := range inner {
		if !outer[k] {
			return false
		}
	}
	return true
}

func setOverlaps(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

// foldIn implements §4.7 step 8: mixed-variant `in`. Both the element
// and every array member must be scalar-coercible, or the operation is
// left unreduced.
func foldIn(elem, arr Expr) (Expr, bool) {
	arrNode, ok := arr.(*Array)
	if !ok {
		return nil, false
	}
	elemStr, ok := exprToComparableString(elem)
	if !ok {
		return nil, false
	}
	found := false
	for _, it := range arrNode.Items {
		itStr, ok := exprToComparableString(it)
		if !ok {
			return nil, false
		}
		if itStr == elemStr {
			found = true
		}
	}
	return Bool(found), true
}

func exprToComparableString(e Expr) (string, bool) {
	switch v := e.(type) {
	case Literal:
		return string(v), true
	case Float:
		return formatTextNumber(float64(v)), true
	case Bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// Matches implements §4.7's top-level matches() helper.
func Matches(e Expr, record any) (bool, error) {
	reduced, err := e.Reduce(record)
	if err != nil {
		return false, err
	}
	b, ok := reduced.(Bool)
	if !ok {
		txt, _ := SerializeText(reduced)
		return false, nonReducedError(txt)
	}
	return bool(b), nil
}

// Filter implements §4.7's top-level filter() helper.
func Filter(e Expr, records []any) ([]any, error) {
	var out []any
	for _, r := range records {
		ok, err := Matches(e, r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
