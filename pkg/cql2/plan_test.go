package cql2

import "testing"

func TestExtractTerminalOpsFlattensAnd(t *testing.T) {
	expr, err := ParseText(`foo >= 1 AND bar = 'baz' AND qux IS NULL`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	ops, err := ExtractTerminalOps(expr)
	if err != nil {
		t.Fatalf("ExtractTerminalOps: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("ExtractTerminalOps returned %d ops, want 3", len(ops))
	}
	byProp := GroupByProperty(ops)
	if len(byProp["foo"]) != 1 || byProp["foo"][0].Op != ">=" {
		t.Errorf("byProp[foo] = %v, want one >= op", byProp["foo"])
	}
	if len(byProp["bar"]) != 1 || byProp["bar"][0].Op != "=" {
		t.Errorf("byProp[bar] = %v, want one = op", byProp["bar"])
	}
	if len(byProp["qux"]) != 1 || byProp["qux"][0].Op != "isnull" {
		t.Errorf("byProp[qux] = %v, want one isnull op", byProp["qux"])
	}
}

func TestExtractTerminalOpsRejectsOr(t *testing.T) {
	expr, err := ParseText(`foo = 1 OR bar = 2`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if _, err := ExtractTerminalOps(expr); err == nil {
		t.Fatal("ExtractTerminalOps did not reject a top-level or")
	}
}

func TestExtractTerminalOpsSingleTerm(t *testing.T) {
	expr, err := ParseText(`foo = 1`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	ops, err := ExtractTerminalOps(expr)
	if err != nil {
		t.Fatalf("ExtractTerminalOps: %v", err)
	}
	if len(ops) != 1 || ops[0].Property != "foo" {
		t.Fatalf("ExtractTerminalOps = %v, want one op on foo", ops)
	}
}

func TestGroupByOpAndProperties(t *testing.T) {
	expr, err := ParseText(`foo >= 1 AND foo <= 10 AND bar = 'baz'`)
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	ops, err := ExtractTerminalOps(expr)
	if err != nil {
		t.Fatalf("ExtractTerminalOps: %v", err)
	}
	byOp := GroupByOp(ops)
	if len(byOp[">="]) != 1 || len(byOp["<="]) != 1 || len(byOp["="]) != 1 {
		t.Errorf("GroupByOp = %v, want one op per operator", byOp)
	}
	props := Properties(ops)
	want := []string{"bar", "foo"}
	if len(props) != len(want) {
		t.Fatalf("Properties() = %v, want %v", props, want)
	}
	for i := range want {
		if props[i] != want[i] {
			t.Errorf("Properties()[%d] = %q, want %q", i, props[i], want[i])
		}
	}
}
