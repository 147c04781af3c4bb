package cql2

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// geomValue is the decoded form of a Geometry node: a type tag, a
// dimension tag (""/"Z"/"M"/"ZM"), and a recursive coordinate tree
// matching GeoJSON's "coordinates" shape ([]float64 for a point, nested
// slices for everything else). orb's own types are strictly 2D, so Z/M
// ordinates are carried here rather than in an orb.Geometry, and
// dropped only when a 2D orb.Geometry is needed for a topological test.
type geomValue struct {
	kind   string // "Point", "LineString", "Polygon", "MultiPoint", "MultiLineString", "MultiPolygon"
	dim    string
	coords any
}

// ToWKT is the public capability-set member `to_wkt` from §4.1's
// geometry adapter, exposed for callers outside this package (e.g. the
// SQL emitter's st_geomfromtext fallback).
func (g *Geometry) ToWKT() (string, error) { return g.toWKT() }

// ToGeoJSONValue is the public capability-set member `to_geojson_value`.
func (g *Geometry) ToGeoJSONValue() (map[string]any, error) { return g.toGeoJSONValue() }

// toWKT implements Expr.to_wkt() (§4.1).
func (g *Geometry) toWKT() (string, error) {
	if g.WKT != "" {
		return g.WKT, nil
	}
	v, err := geomValueFromGeoJSON(g.GeoJSON)
	if err != nil {
		return "", err
	}
	return v.wkt(), nil
}

// toGeoJSONValue implements Expr.to_geojson_value() (§4.1).
func (g *Geometry) toGeoJSONValue() (map[string]any, error) {
	if g.GeoJSON != nil {
		return g.GeoJSON, nil
	}
	v, err := parseWKT(g.WKT)
	if err != nil {
		return nil, err
	}
	return v.toGeoJSON(), nil
}

func geomValueFromGeoJSON(m map[string]any) (*geomValue, error) {
	kind, _ := m["type"].(string)
	if kind == "" {
		return nil, coercionError("geojson value missing \"type\"")
	}
	coords := m["coordinates"]
	dim := inferDim(coords)
	return &geomValue{kind: kind, dim: dim, coords: coords}, nil
}

// inferDim infers XY/XYZ/XYZM from the first coordinate tuple's length,
// per §4.1.
func inferDim(coords any) string {
	tuple := firstTuple(coords)
	switch len(tuple) {
	case 3:
		return "Z"
	case 4:
		return "ZM"
	default:
		return ""
	}
}

func firstTuple(v any) []float64 {
	switch t := v.(type) {
	case []float64:
		return t
	case []any:
		if len(t) == 0 {
			return nil
		}
		if nums, ok := asFloatTuple(t); ok {
			return nums
		}
		return firstTuple(t[0])
	default:
		return nil
	}
}

func asFloatTuple(items []any) ([]float64, bool) {
	out := make([]float64, 0, len(items))
	for _, it := range items {
		f, ok := toFloat(it)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

func (v *geomValue) toGeoJSON() map[string]any {
	return map[string]any{
		"type":        v.kind,
		"coordinates": v.coords,
	}
}

// wkt renders the value to WKT text, inserting the dimension tag, per
// §3.1's "if the text grammar matched three coordinates without an
// explicit Z/M/ZM tag, the emitter canonicalizes to Z" rule (applied the
// same way on the GeoJSON -> WKT path).
func (v *geomValue) wkt() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(v.kind))
	if v.dim != "" {
		b.WriteString(" ")
		b.WriteString(v.dim)
	}
	b.WriteString(wktBody(v.coords))
	return b.String()
}

func wktBody(coords any) string {
	switch t := coords.(type) {
	case []float64:
		parts := make([]string, len(t))
		for i, f := range t {
			parts[i] = formatWKTNumber(f)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case []any:
		if nums, ok := asFloatTuple(t); ok {
			parts := make([]string, len(nums))
			for i, f := range nums {
				parts[i] = formatWKTNumber(f)
			}
			return "(" + strings.Join(parts, " ") + ")"
		}
		parts := make([]string, len(t))
		for i, it := range t {
			parts[i] = wktBody(it)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "()"
	}
}

func formatWKTNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// normalizeWKTText implements §4.4's geometry canonicalization: if the
// WKT had three coordinates per tuple but no explicit Z/M/ZM tag, the
// re-rendered text carries an inserted Z tag (parseWKT infers the tag,
// geomValue.wkt renders it back out).
func normalizeWKTText(lit string) (string, error) {
	v, err := parseWKT(lit)
	if err != nil {
		return "", err
	}
	return v.wkt(), nil
}

// parseWKT decodes OGC WKT into a geomValue. It supports the
// POINT/LINESTRING/POLYGON/MULTIPOINT/MULTILINESTRING/MULTIPOLYGON
// productions with an optional Z/M/ZM tag. GEOMETRYCOLLECTION, which the
// lexer also reads as a geometry literal, is not supported: it is
// rejected with a coercion error.
func parseWKT(s string) (*geomValue, error) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, "( ")
	if idx < 0 {
		return nil, coercionError("invalid WKT %q", s)
	}
	kindTok := s[:idx]
	rest := strings.TrimSpace(s[idx:])
	dim := ""
	for _, tag := range []string{"ZM", "Z", "M"} {
		if strings.HasPrefix(rest, tag+"(") || strings.HasPrefix(rest, tag+" (") {
			dim = tag
			rest = strings.TrimSpace(strings.TrimPrefix(rest, tag))
			break
		}
	}
	kind := wktKindToGeoJSON(kindTok)
	if kind == "" {
		return nil, coercionError("unsupported WKT geometry %q", kindTok)
	}
	coords, err := parseWKTCoords(rest, nestingFor(kind))
	if err != nil {
		return nil, err
	}
	if dim == "" {
		dim = inferDim(coords)
	}
	return &geomValue{kind: kind, dim: dim, coords: coords}, nil
}

func wktKindToGeoJSON(tok string) string {
	switch strings.ToUpper(strings.TrimSpace(tok)) {
	case "POINT":
		return "Point"
	case "LINESTRING":
		return "LineString"
	case "POLYGON":
		return "Polygon"
	case "MULTIPOINT":
		return "MultiPoint"
	case "MULTILINESTRING":
		return "MultiLineString"
	case "MULTIPOLYGON":
		return "MultiPolygon"
	default:
		return ""
	}
}

func nestingFor(kind string) int {
	switch kind {
	case "Point":
		return 0
	case "LineString", "MultiPoint":
		return 1
	case "Polygon", "MultiLineString":
		return 2
	case "MultiPolygon":
		return 3
	default:
		return 1
	}
}

// parseWKTCoords parses a parenthesized coordinate tree of the given
// nesting depth (0 = a single "(x y z)" tuple).
func parseWKTCoords(s string, depth int) (any, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, coercionError("malformed WKT coordinate list %q", s)
	}
	inner := s[1 : len(s)-1]
	if depth == 0 {
		fields := strings.Fields(inner)
		out := make([]float64, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, numberParseError(f)
			}
			out = append(out, v)
		}
		return out, nil
	}
	groups := splitTopLevel(inner)
	out := make([]any, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if depth == 1 {
			fields := strings.Fields(g)
			nums := make([]float64, 0, len(fields))
			for _, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, numberParseError(f)
				}
				nums = append(nums, v)
			}
			out = append(out, toAnySlice(nums))
			continue
		}
		child, err := parseWKTCoords(g, depth-1)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func toAnySlice(f []float64) []any {
	out := make([]any, len(f))
	for i, v := range f {
		out[i] = v
	}
	return out
}

// splitTopLevel splits "(a b), (c d)" style lists on top-level commas,
// and strips one level of parens from each "(a b)" group when present.
func splitTopLevel(s string) []string {
	var groups []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				groups = append(groups, s[start:i])
				start = i + 1
			}
		}
	}
	groups = append(groups, s[start:])
	for i, g := range groups {
		g = strings.TrimSpace(g)
		groups[i] = g
	}
	return groups
}

// toOrb projects the value down to a 2D orb.Geometry for topological
// tests, dropping any Z/M ordinates (orb is 2D-only).
func (v *geomValue) toOrb() (orb.Geometry, error) {
	switch v.kind {
	case "Point":
		t := firstTuple(v.coords)
		if len(t) < 2 {
			return nil, coercionError("point geometry missing coordinates")
		}
		return orb.Point{t[0], t[1]}, nil
	case "MultiPoint":
		pts, err := pointsOf(v.coords)
		if err != nil {
			return nil, err
		}
		mp := make(orb.MultiPoint, len(pts))
		copy(mp, pts)
		return mp, nil
	case "LineString":
		pts, err := pointsOf(v.coords)
		if err != nil {
			return nil, err
		}
		return orb.LineString(pts), nil
	case "MultiLineString":
		rows, ok := v.coords.([]any)
		if !ok {
			return nil, coercionError("malformed MultiLineString")
		}
		mls := make(orb.MultiLineString, 0, len(rows))
		for _, row := range rows {
			pts, err := pointsOf(row)
			if err != nil {
				return nil, err
			}
			mls = append(mls, orb.LineString(pts))
		}
		return mls, nil
	case "Polygon":
		rings, err := ringsOf(v.coords)
		if err != nil {
			return nil, err
		}
		return orb.Polygon(rings), nil
	case "MultiPolygon":
		polys, ok := v.coords.([]any)
		if !ok {
			return nil, coercionError("malformed MultiPolygon")
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, p := range polys {
			rings, err := ringsOf(p)
			if err != nil {
				return nil, err
			}
			mp = append(mp, orb.Polygon(rings))
		}
		return mp, nil
	default:
		return nil, coercionError("unsupported geometry kind %q", v.kind)
	}
}

func pointsOf(v any) ([]orb.Point, error) {
	rows, ok := v.([]any)
	if !ok {
		return nil, coercionError("malformed coordinate list")
	}
	out := make([]orb.Point, 0, len(rows))
	for _, row := range rows {
		t := firstTuple(row)
		if len(t) < 2 {
			return nil, coercionError("malformed coordinate tuple")
		}
		out = append(out, orb.Point{t[0], t[1]})
	}
	return out, nil
}

func ringsOf(v any) ([]orb.Ring, error) {
	rows, ok := v.([]any)
	if !ok {
		return nil, coercionError("malformed polygon rings")
	}
	out := make([]orb.Ring, 0, len(rows))
	for _, row := range rows {
		pts, err := pointsOf(row)
		if err != nil {
			return nil, err
		}
		out = append(out, orb.Ring(pts))
	}
	return out, nil
}

// exprToGeomValue coerces an Expr to a geomValue. A BBox is accepted by
// projecting it to an axis-aligned rectangle (Polygon), per §4.1.
func exprToGeomValue(e Expr) (*geomValue, error) {
	switch g := e.(type) {
	case *Geometry:
		if g.WKT != "" {
			return parseWKT(g.WKT)
		}
		return geomValueFromGeoJSON(g.GeoJSON)
	case *BBox:
		return bboxToGeomValue(g)
	default:
		return nil, coercionError("cannot project %T to a geometry", e)
	}
}

func bboxToGeomValue(b *BBox) (*geomValue, error) {
	nums := make([]float64, len(b.Values))
	for i, v := range b.Values {
		f, ok := v.(Float)
		if !ok {
			return nil, coercionError("bbox element %d is not numeric", i)
		}
		nums[i] = float64(f)
	}
	var minX, minY, maxX, maxY float64
	switch len(nums) {
	case 4:
		minX, minY, maxX, maxY = nums[0], nums[1], nums[2], nums[3]
	case 6:
		minX, minY, maxX, maxY = nums[0], nums[1], nums[3], nums[4]
	default:
		return nil, coercionError("bbox must have 4 or 6 elements, got %d", len(nums))
	}
	ring := []any{
		toAnySlice([]float64{minX, minY}),
		toAnySlice([]float64{maxX, minY}),
		toAnySlice([]float64{maxX, maxY}),
		toAnySlice([]float64{minX, maxY}),
		toAnySlice([]float64{minX, minY}),
	}
	return &geomValue{kind: "Polygon", coords: []any{ring}}, nil
}

// spatialOp implements the eight spatial predicates of §4.1. Equality
// compares the two geometries' bounding boxes, and for polygons their
// planar areas too, so it does not depend on ring start/ordering; it is
// not a full point-set comparison, and different shapes with equal area
// and bounds compare equal. The other predicates are decided on bounding
// boxes (intersects, when one side is a point, tests that point against
// the other side's bounding box), since this package does not carry a
// full topology engine (see spec.md's Non-goals: "a geometry engine").
func spatialOp(lhs, rhs Expr, op string) (Bool, error) {
	lv, err := exprToGeomValue(lhs)
	if err != nil {
		return false, err
	}
	rv, err := exprToGeomValue(rhs)
	if err != nil {
		return false, err
	}
	lg, err := lv.toOrb()
	if err != nil {
		return false, err
	}
	rg, err := rv.toOrb()
	if err != nil {
		return false, err
	}
	lb, rb := lg.Bound(), rg.Bound()
	switch op {
	case "s_equals":
		return Bool(geometrySetEqual(lg, rg)), nil
	case "s_intersects", "anyinteracts":
		return Bool(lb.Intersects(rb) && boundsActuallyTouch(lg, rg)), nil
	case "s_disjoint":
		return Bool(!lb.Intersects(rb)), nil
	case "s_within":
		return Bool(rb.Contains(lb.Min) && rb.Contains(lb.Max)), nil
	case "s_contains":
		return Bool(lb.Contains(rb.Min) && lb.Contains(rb.Max)), nil
	case "s_touches", "s_overlaps", "s_crosses":
		return Bool(lb.Intersects(rb)), nil
	default:
		return false, notImplemented(op)
	}
}

func boundsActuallyTouch(a, b orb.Geometry) bool {
	// Point-in-point / point-in-bound fast paths give an exact answer
	// for the common single-feature intersects() case used by filters
	// like s_intersects(geometry, POINT(...)).
	if pt, ok := a.(orb.Point); ok {
		return b.Bound().Contains(pt)
	}
	if pt, ok := b.(orb.Point); ok {
		return a.Bound().Contains(pt)
	}
	return true
}

func geometrySetEqual(a, b orb.Geometry) bool {
	pa, pb := planar.Area(toPolygonOrEmpty(a)), planar.Area(toPolygonOrEmpty(b))
	if pa != 0 || pb != 0 {
		return fmt.Sprintf("%g", pa) == fmt.Sprintf("%g", pb) && a.Bound() == b.Bound()
	}
	return a.Bound() == b.Bound()
}

func toPolygonOrEmpty(g orb.Geometry) orb.Polygon {
	if p, ok := g.(orb.Polygon); ok {
		return p
	}
	return orb.Polygon{}
}

// marshalGeoJSON renders a geometry Expr as GeoJSON bytes with
// encoding/json, converting a WKT carrier to a GeoJSON value first.
func marshalGeoJSON(g *Geometry) ([]byte, error) {
	v, err := g.toGeoJSONValue()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

var _ = geojson.NewGeometry // keeps the orb/geojson import in use; nothing else in this file calls it
