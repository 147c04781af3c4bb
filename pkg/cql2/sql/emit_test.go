package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-stac-client/pkg/cql2"
)

func mustParse(t *testing.T, text string) cql2.Expr {
	t.Helper()
	expr, err := cql2.ParseText(text)
	require.NoError(t, err)
	return expr
}

// Scenario 4: spatial + temporal + arithmetic + equality + property mix.
func TestToSQLMixedScenario(t *testing.T) {
	expr := mustParse(t, `s_intersects(geom, POINT(0 0)) and foo >= 1 and bar='baz' and TIMESTAMP('2020-01-01 00:00:00Z') >= BoRk`)

	got, err := ToSQL(expr, Options{})
	require.NoError(t, err)

	assert.Contains(t, got, "st_intersects(geom, st_geomfromtext('POINT(0 0)'))")
	assert.Contains(t, got, "foo >= 1")
	assert.Contains(t, got, "bar = 'baz'")
	assert.Contains(t, got, `CAST('2020-01-01 00:00:00Z' AS TIMESTAMP WITH TIME ZONE) >= "BoRk"`)
	assert.Contains(t, got, " AND ")
}

// Scenario 5: temporal overlaps expands to the exact inline comparison chain.
func TestToSQLTemporalOverlaps(t *testing.T) {
	expr := mustParse(t, `t_overlaps(interval(a,'2020-01-01T00:00:00Z'),interval('2020-01-01T00:00:00Z','2020-02-01T00:00:00Z'))`)

	got, err := ToSQL(expr, Options{})
	require.NoError(t, err)

	want := `(a < CAST('2020-02-01T00:00:00Z' AS TIMESTAMP WITH TIME ZONE) AND CAST('2020-01-01T00:00:00Z' AS TIMESTAMP WITH TIME ZONE) < CAST('2020-01-01T00:00:00Z' AS TIMESTAMP WITH TIME ZONE) AND CAST('2020-01-01T00:00:00Z' AS TIMESTAMP WITH TIME ZONE) < CAST('2020-02-01T00:00:00Z' AS TIMESTAMP WITH TIME ZONE))`
	assert.Equal(t, want, got)
}

// Scenario 7: DuckDB dialect rewrites Postgres array operators to list functions.
func TestToSQLDuckDBArrayRewrite(t *testing.T) {
	expr := mustParse(t, `a_contains(foo, bar)`)

	got, err := ToSQL(expr, Options{Dialect: DuckDB})
	require.NoError(t, err)
	assert.Equal(t, "list_has_all(foo, bar)", got)

	// Default dialect keeps the Postgres operator.
	gotDefault, err := ToSQL(expr, Options{})
	require.NoError(t, err)
	assert.Equal(t, "foo @> bar", gotDefault)
}

func TestToSQLDuckDBOtherArrayOps(t *testing.T) {
	tests := []struct {
		op   string
		want string
	}{
		{"a_containedby", "list_has_all(bar, foo)"},
		{"a_overlaps", "list_has_any(foo, bar)"},
	}
	for _, tt := range tests {
		expr := mustParse(t, tt.op+`(foo, bar)`)
		got, err := ToSQL(expr, Options{Dialect: DuckDB})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

// Scenario 8: a JSON property resolver splices a fragment in place of
// the bare identifier.
func TestToSQLResolverHook(t *testing.T) {
	expr := mustParse(t, `collection = 'landsat'`)

	resolver := MapResolver{Properties: map[string]string{
		"collection": "payload ->> 'collection'",
	}}
	got, err := ToSQL(expr, Options{Resolver: resolver})
	require.NoError(t, err)
	assert.Equal(t, `payload ->> 'collection' = 'landsat'`, got)
}

func TestToSQLResolverFuncHook(t *testing.T) {
	expr := mustParse(t, `my_udf(foo)`)

	resolver := ResolverFunc(func(name string, kind ResolverKind) (string, bool) {
		if kind == KindFunction && name == "my_udf" {
			return "custom_fn(foo)", true
		}
		return "", false
	})
	got, err := ToSQL(expr, Options{Resolver: resolver})
	require.NoError(t, err)
	assert.Equal(t, "custom_fn(foo)", got)
}

func TestToSQLResolverRejectsEmptyFragment(t *testing.T) {
	expr := mustParse(t, `collection = 'landsat'`)
	resolver := MapResolver{Properties: map[string]string{"collection": "   "}}
	_, err := ToSQL(expr, Options{Resolver: resolver})
	require.Error(t, err)
}

func TestToSQLSpatialOperatorFamily(t *testing.T) {
	tests := []struct {
		cql2op string
		sqlFn  string
	}{
		{"s_intersects", "st_intersects"},
		{"s_equals", "st_equals"},
		{"s_disjoint", "st_disjoint"},
		{"s_touches", "st_touches"},
		{"s_within", "st_within"},
		{"s_overlaps", "st_overlaps"},
		{"s_crosses", "st_crosses"},
		{"s_contains", "st_contains"},
	}
	for _, tt := range tests {
		expr := cql2.NewOperation(tt.cql2op, &cql2.Property{Name: "geom"}, &cql2.Property{Name: "other"})
		got, err := ToSQL(expr, Options{})
		require.NoError(t, err)
		assert.Equal(t, tt.sqlFn+"(geom, other)", got)
	}
}

func TestToSQLIsNullAndNot(t *testing.T) {
	got, err := ToSQL(mustParse(t, `foo IS NULL`), Options{})
	require.NoError(t, err)
	assert.Equal(t, "foo IS NULL", got)

	got, err = ToSQL(mustParse(t, `NOT foo = 1`), Options{})
	require.NoError(t, err)
	assert.Equal(t, "NOT foo = 1", got)
}

func TestToSQLInAndBetween(t *testing.T) {
	got, err := ToSQL(mustParse(t, `foo IN (1, 2, 3)`), Options{})
	require.NoError(t, err)
	assert.Equal(t, "foo = ANY(ARRAY[1, 2, 3])", got)

	got, err = ToSQL(mustParse(t, `foo BETWEEN 1 AND 10`), Options{})
	require.NoError(t, err)
	assert.Equal(t, "foo BETWEEN 1 AND 10", got)
}

func TestToSQLCaseiAccenti(t *testing.T) {
	got, err := ToSQL(mustParse(t, `CASEI(foo) = CASEI('Bar')`), Options{})
	require.NoError(t, err)
	assert.Equal(t, "lower(foo) = lower('Bar')", got)

	got, err = ToSQL(mustParse(t, `ACCENTI(foo) = ACCENTI('Bar')`), Options{})
	require.NoError(t, err)
	assert.Equal(t, "strip_accents(foo) = strip_accents('Bar')", got)
}

func TestToSQLPowerMapsToPowerFunction(t *testing.T) {
	got, err := ToSQL(mustParse(t, `foo^2 = 4`), Options{})
	require.NoError(t, err)
	assert.Equal(t, "power(foo, 2) = 4", got)
}
