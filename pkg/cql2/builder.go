package cql2

// Builder is a small fluent helper for constructing Expr values from Go
// code, generating the same Operation nodes the text parser would. It
// mirrors the teacher's pkg/filter and pkg/cql2 builder prototypes, now
// generalized over the single Expr tree instead of two separate
// half-finished AST shapes.
type Builder struct{}

// NewBuilder returns a Builder. It carries no state; every method is a
// plain constructor function exposed as sugar for call-site chaining.
func NewBuilder() Builder { return Builder{} }

func (Builder) Property(name string) *Property { return &Property{Name: name} }
func (Builder) String(s string) Literal         { return Literal(s) }
func (Builder) Number(f float64) Float          { return Float(f) }
func (Builder) Bool(b bool) Bool                { return Bool(b) }
func (Builder) Null() Null                      { return Null{} }

func (Builder) Array(items ...Expr) *Array { return &Array{Items: items} }
func (Builder) BBox(values ...Expr) *BBox  { return &BBox{Values: values} }

func (Builder) Geometry(wkt string) *Geometry { return &Geometry{WKT: wkt} }
func (Builder) GeoJSON(v map[string]any) *Geometry {
	return &Geometry{GeoJSON: v}
}

func (Builder) Date(child Expr) *Date           { return &Date{Child: child} }
func (Builder) Timestamp(child Expr) *Timestamp { return &Timestamp{Child: child} }
func (Builder) Interval(start, end Expr) *Interval {
	return &Interval{Start: start, End: end}
}
func (Builder) OpenInterval() IntervalOpen { return IntervalOpen{} }

func (Builder) Eq(a, b Expr) *Operation  { return NewOperation("=", a, b) }
func (Builder) Neq(a, b Expr) *Operation { return NewOperation("<>", a, b) }
func (Builder) Lt(a, b Expr) *Operation  { return NewOperation("<", a, b) }
func (Builder) Lte(a, b Expr) *Operation { return NewOperation("<=", a, b) }
func (Builder) Gt(a, b Expr) *Operation  { return NewOperation(">", a, b) }
func (Builder) Gte(a, b Expr) *Operation { return NewOperation(">=", a, b) }

func (Builder) Like(a, pattern Expr) *Operation { return NewOperation("like", a, pattern) }
func (Builder) Between(a, lo, hi Expr) *Operation {
	return NewOperation("between", a, lo, hi)
}
func (Builder) In(a Expr, set *Array) *Operation { return NewOperation("in", a, set) }
func (Builder) IsNull(a Expr) *Operation         { return NewOperation("isnull", a) }

func (Builder) CaseI(a Expr) *Operation   { return NewOperation("casei", a) }
func (Builder) AccentI(a Expr) *Operation { return NewOperation("accenti", a) }

func (Builder) And(exprs ...Expr) *Operation { return NewOperation("and", exprs...) }
func (Builder) Or(exprs ...Expr) *Operation  { return NewOperation("or", exprs...) }
func (Builder) Not(a Expr) *Operation        { return NewOperation("not", a) }

func (Builder) SIntersects(a, b Expr) *Operation { return NewOperation("s_intersects", a, b) }
func (Builder) SEquals(a, b Expr) *Operation     { return NewOperation("s_equals", a, b) }
func (Builder) SDisjoint(a, b Expr) *Operation   { return NewOperation("s_disjoint", a, b) }
func (Builder) STouches(a, b Expr) *Operation    { return NewOperation("s_touches", a, b) }
func (Builder) SWithin(a, b Expr) *Operation     { return NewOperation("s_within", a, b) }
func (Builder) SOverlaps(a, b Expr) *Operation   { return NewOperation("s_overlaps", a, b) }
func (Builder) SCrosses(a, b Expr) *Operation    { return NewOperation("s_crosses", a, b) }
func (Builder) SContains(a, b Expr) *Operation   { return NewOperation("s_contains", a, b) }

func (Builder) TIntersects(a, b Expr) *Operation { return NewOperation("t_intersects", a, b) }
func (Builder) TBefore(a, b Expr) *Operation     { return NewOperation("t_before", a, b) }
func (Builder) TAfter(a, b Expr) *Operation      { return NewOperation("t_after", a, b) }
func (Builder) TDuring(a, b Expr) *Operation     { return NewOperation("t_during", a, b) }
func (Builder) TContains(a, b Expr) *Operation   { return NewOperation("t_contains", a, b) }

func (Builder) AEquals(a, b Expr) *Operation      { return NewOperation("a_equals", a, b) }
func (Builder) AContains(a, b Expr) *Operation    { return NewOperation("a_contains", a, b) }
func (Builder) AContainedBy(a, b Expr) *Operation { return NewOperation("a_containedby", a, b) }
func (Builder) AOverlaps(a, b Expr) *Operation    { return NewOperation("a_overlaps", a, b) }
