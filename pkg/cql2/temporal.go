package cql2

import "time"

// instant is a half-open projection of a Date/Timestamp/Interval value
// onto [start, end), per §3.3's DateRange projection. A Timestamp
// projects to a zero-width range (start == end); a Date covers its
// calendar day [d, d+1 day). openStart/openEnd mark the unbounded side
// of an Interval built with IntervalOpen ("..").
type instant struct {
	start, end       time.Time
	openStart, openEnd bool
}

const dateLayout = "2006-01-02"

// projectDateRange implements §3.3 for Date, Timestamp, and Interval
// nodes (after Literal children have already been reduced to concrete
// date/timestamp strings upstream).
func projectDateRange(e Expr) (*instant, error) {
	switch v := e.(type) {
	case *Date:
		s, err := literalString(v.Child, "date")
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, coercionError("invalid date %q: %s", s, err)
		}
		return &instant{start: t, end: t.AddDate(0, 0, 1)}, nil
	case *Timestamp:
		s, err := literalString(v.Child, "timestamp")
		if err != nil {
			return nil, err
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, err
		}
		return &instant{start: t, end: t}, nil
	case *Interval:
		return projectInterval(v)
	default:
		return nil, coercionError("cannot project %T as a temporal value", e)
	}
}

func literalString(e Expr, what string) (string, error) {
	switch v := e.(type) {
	case Literal:
		return string(v), nil
	case *Property:
		return "", coercionError("%s bound to unresolved property %q", what, v.Name)
	default:
		return "", coercionError("%s requires a string literal, got %T", what, e)
	}
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, coercionError("invalid timestamp %q: want RFC 3339", s)
}

func projectInterval(iv *Interval) (*instant, error) {
	out := &instant{}
	if _, ok := iv.Start.(IntervalOpen); ok {
		out.openStart = true
	} else {
		s, err := instantFromEndpoint(iv.Start)
		if err != nil {
			return nil, err
		}
		out.start = s.start
	}
	if _, ok := iv.End.(IntervalOpen); ok {
		out.openEnd = true
	} else {
		s, err := instantFromEndpoint(iv.End)
		if err != nil {
			return nil, err
		}
		out.end = s.end
		if out.end.IsZero() {
			out.end = s.start
		}
	}
	return out, nil
}

func instantFromEndpoint(e Expr) (*instant, error) {
	switch e.(type) {
	case *Date, *Timestamp:
		return projectDateRange(e)
	case Literal:
		s := string(e.(Literal))
		if t, err := time.Parse(dateLayout, s); err == nil {
			return &instant{start: t, end: t.AddDate(0, 0, 1)}, nil
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, err
		}
		return &instant{start: t, end: t}, nil
	default:
		return nil, coercionError("interval endpoint must be a date/timestamp literal, got %T", e)
	}
}

// temporalOp implements §4.2's sixteen Allen-style relations, following
// invertedTemporal to reduce every non-primitive relation to one of the
// nine primitives with swapped arguments. An open interval endpoint
// (IntervalOpen, "..") stands for -Inf/+Inf in the comparisons below,
// so it never violates a Before/After test and never satisfies an
// Equal test against a bounded endpoint.
func temporalOp(lhs, rhs Expr, op string) (Bool, error) {
	if primitive, ok := invertedTemporal[op]; ok {
		return temporalOp(rhs, lhs, primitive)
	}
	a, err := projectDateRange(lhs)
	if err != nil {
		return false, err
	}
	b, err := projectDateRange(rhs)
	if err != nil {
		return false, err
	}
	switch op {
	case "t_before": // L.end < R.start
		return Bool(before(a.end, a.openEnd, b.start, b.openStart)), nil
	case "t_meets": // L.end = R.start
		return Bool(equalAt(a.end, a.openEnd, b.start, b.openStart)), nil
	case "t_overlaps": // L.start < R.end ∧ R.start < L.end ∧ L.end < R.end
		return Bool(before(a.start, a.openStart, b.end, b.openEnd) &&
			before(b.start, b.openStart, a.end, a.openEnd) &&
			before(a.end, a.openEnd, b.end, b.openEnd)), nil
	case "t_starts": // L.start = R.start ∧ L.end < R.end
		return Bool(equalAt(a.start, a.openStart, b.start, b.openStart) &&
			before(a.end, a.openEnd, b.end, b.openEnd)), nil
	case "t_during": // L.start > R.start ∧ L.end < R.end
		return Bool(before(b.start, b.openStart, a.start, a.openStart) &&
			before(a.end, a.openEnd, b.end, b.openEnd)), nil
	case "t_finishes": // L.start > R.start ∧ L.end = R.end
		return Bool(before(b.start, b.openStart, a.start, a.openStart) &&
			equalAt(a.end, a.openEnd, b.end, b.openEnd)), nil
	case "t_equals": // L.start = R.start ∧ L.end = R.end
		return Bool(equalAt(a.start, a.openStart, b.start, b.openStart) &&
			equalAt(a.end, a.openEnd, b.end, b.openEnd)), nil
	case "t_disjoint": // ¬(L.start ≤ R.end ∧ L.end ≥ R.start)
		return Bool(!(lte(a.start, a.openStart, b.end, b.openEnd) &&
			gte(a.end, a.openEnd, b.start, b.openStart))), nil
	case "t_intersects", "anyinteracts": // L.start ≤ R.end ∧ L.end ≥ R.start
		return Bool(lte(a.start, a.openStart, b.end, b.openEnd) &&
			gte(a.end, a.openEnd, b.start, b.openStart)), nil
	default:
		return false, notImplemented(op)
	}
}

// before/equalAt/lte/gte treat an open endpoint as unbounded in the
// direction that makes it never the binding constraint: an open start
// is -Inf, an open end is +Inf.
func before(t time.Time, tOpenEnd bool, u time.Time, uOpenStart bool) bool {
	if tOpenEnd || uOpenStart {
		return true
	}
	return t.Before(u)
}

func lte(t time.Time, tOpenStart bool, u time.Time, uOpenEnd bool) bool {
	if tOpenStart || uOpenEnd {
		return true
	}
	return !t.After(u)
}

func gte(t time.Time, tOpenEnd bool, u time.Time, uOpenStart bool) bool {
	if tOpenEnd || uOpenStart {
		return true
	}
	return !t.Before(u)
}

func equalAt(t time.Time, openA bool, u time.Time, openB bool) bool {
	if openA || openB {
		return openA == openB
	}
	return t.Equal(u)
}
