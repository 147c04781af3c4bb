// Package cql2 implements the OGC Common Query Language 2 (CQL2): parsing
// cql2-text and cql2-json into a single abstract syntax tree, emitting the
// tree back to canonical text, canonical JSON, or dialect-aware SQL, and
// evaluating it against feature-like records.
package cql2

import "sort"

// Expr is the CQL2 abstract syntax tree. Every concrete node type in this
// package implements it. The tree is acyclic and parent-owned; reduction
// and emission never mutate an existing tree, they build a new one.
type Expr interface {
	exprNode()
	// Clone returns a deep, independent copy.
	Clone() Expr
	// Reduce partially evaluates the node against an optional record
	// (a JSON-shaped value, or nil), per §4.7. It never returns an
	// error for an operator it simply can't fold further — only for
	// malformed input such as an arity mismatch.
	Reduce(record any) (Expr, error)
}

// Bool is a boolean literal.
type Bool bool

func (Bool) exprNode()       {}
func (b Bool) Clone() Expr   { return b }

// Float is the sole numeric literal variant; integers are represented as
// exact floats (see SPEC_FULL.md Open Question (a)).
type Float float64

func (Float) exprNode()     {}
func (f Float) Clone() Expr { return f }

// Literal is a string literal with its quoting already stripped.
type Literal string

func (Literal) exprNode()     {}
func (l Literal) Clone() Expr { return l }

// Null is the SQL NULL literal.
type Null struct{}

func (Null) exprNode()     {}
func (n Null) Clone() Expr { return n }

// Property is a reference to a field on the evaluated record. Name
// preserves the original identifier text, including case; quoting is a
// presentation concern left to the emitters.
type Property struct {
	Name string
}

func (*Property) exprNode() {}
func (p *Property) Clone() Expr {
	c := *p
	return &c
}

// Array is a heterogeneous, ordered array literal.
type Array struct {
	Items []Expr
}

func (*Array) exprNode() {}
func (a *Array) Clone() Expr {
	items := make([]Expr, len(a.Items))
	for i, it := range a.Items {
		items[i] = it.Clone()
	}
	return &Array{Items: items}
}

// BBox is an axis-aligned bounding box of 4 (2D) or 6 (3D) numbers.
type BBox struct {
	Values []Expr
}

func (*BBox) exprNode() {}
func (b *BBox) Clone() Expr {
	v := make([]Expr, len(b.Values))
	for i, it := range b.Values {
		v[i] = it.Clone()
	}
	return &BBox{Values: v}
}

// Geometry carries either a WKT string or a decoded GeoJSON value. Exactly
// one of WKT/GeoJSON is non-empty/non-nil; see geometry.go for the
// conversion contract (C1).
type Geometry struct {
	WKT     string
	GeoJSON map[string]any
}

func (*Geometry) exprNode() {}
func (g *Geometry) Clone() Expr {
	c := &Geometry{WKT: g.WKT}
	if g.GeoJSON != nil {
		c.GeoJSON = cloneJSONObject(g.GeoJSON)
	}
	return c
}

// Date is a calendar date constructor wrapping one Literal or Property.
type Date struct {
	Child Expr
}

func (*Date) exprNode() {}
func (d *Date) Clone() Expr {
	return &Date{Child: d.Child.Clone()}
}

// Timestamp is an instant-with-timezone constructor wrapping one Literal
// or Property.
type Timestamp struct {
	Child Expr
}

func (*Timestamp) exprNode() {}
func (t *Timestamp) Clone() Expr {
	return &Timestamp{Child: t.Child.Clone()}
}

// IntervalOpen is the ".." sentinel used as an Interval endpoint to mean
// an unbounded side.
type IntervalOpen struct{}

func (IntervalOpen) exprNode()     {}
func (o IntervalOpen) Clone() Expr { return o }

// Interval is a half-open or closed temporal range with exactly two
// endpoints, each a Literal, Property, or IntervalOpen.
type Interval struct {
	Start, End Expr
}

func (*Interval) exprNode() {}
func (i *Interval) Clone() Expr {
	return &Interval{Start: i.Start.Clone(), End: i.End.Clone()}
}

// Operation is a call to a named operator or function. Op is stored
// lowercased in canonical form.
type Operation struct {
	Op   string
	Args []Expr
}

func (*Operation) exprNode() {}
func (o *Operation) Clone() Expr {
	args := make([]Expr, len(o.Args))
	for i, a := range o.Args {
		args[i] = a.Clone()
	}
	return &Operation{Op: o.Op, Args: args}
}

// NewOperation builds an Operation, lowercasing Op per §3.1's canonical
// form invariant.
func NewOperation(op string, args ...Expr) *Operation {
	return &Operation{Op: normalizeOpName(op), Args: args}
}

// Equal reports structural equality via canonical-text equivalence, as
// required by §3.1 and used by the boolean-folding dedup step (§4.7) and
// by the round-trip test properties (§8.1).
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, errA := SerializeText(a)
	tb, errB := SerializeText(b)
	if errA != nil || errB != nil {
		return false
	}
	return ta == tb
}

// sortExprsByText sorts a slice of Expr by canonical text, giving boolean
// folding (§4.7) a total, stable ordering.
func sortExprsByText(exprs []Expr) []Expr {
	keys := make([]string, len(exprs))
	for i, e := range exprs {
		s, err := SerializeText(e)
		if err != nil {
			s = ""
		}
		keys[i] = s
	}
	idx := make([]int, len(exprs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return keys[idx[i]] < keys[idx[j]] })
	out := make([]Expr, len(exprs))
	for i, j := range idx {
		out[i] = exprs[j]
	}
	return out
}

func cloneJSONObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneJSONValue(v)
	}
	return out
}

func cloneJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneJSONObject(t)
	case []any:
		out := make([]any, len(t))
		for i, it := range t {
			out[i] = cloneJSONValue(it)
		}
		return out
	default:
		return v
	}
}

// Add combines two expressions with a top-level `and`, per §4.3 and
// §6.1's `Expr + Expr` operator and §8.1's `(A + B).to_text()` property.
func Add(a, b Expr) Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	var args []Expr
	if op, ok := a.(*Operation); ok && op.Op == "and" {
		args = append(args, op.Args...)
	} else {
		args = append(args, a)
	}
	if op, ok := b.(*Operation); ok && op.Op == "and" {
		args = append(args, op.Args...)
	} else {
		args = append(args, b)
	}
	return &Operation{Op: "and", Args: args}
}
