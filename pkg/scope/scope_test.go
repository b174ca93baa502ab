package scope

import (
	"testing"

	"sv2v/pkg/ast"
)

func Test_Scope_Isolation(t *testing.T) {
	s := New[int]()
	s.PushFrame("m", false)
	s.InsertElem("x", 1)

	s.PushFrame("blk", false)
	s.InsertElem("x", 2)

	if e := s.LookupLocalIdentM("x"); e.IsEmpty() || e.Unwrap().Meta != 2 {
		t.Errorf("local lookup in inner frame got %+v, want meta 2", e)
	}

	s.PopFrame()

	if e := s.LookupElemM("x"); e.IsEmpty() || e.Unwrap().Meta != 1 {
		t.Errorf("lookup after pop got %+v, want meta 1", e)
	}
}

func Test_Scope_Shadowing(t *testing.T) {
	s := New[string]()
	s.PushFrame("m", false)
	s.InsertElem("x", "outer")
	s.PushFrame("f", true)
	s.InsertElem("x", "inner")

	e := s.LookupElemM("x")
	if e.IsEmpty() || e.Unwrap().Meta != "inner" {
		t.Fatalf("shadowed lookup got %+v, want inner", e)
	}

	inner := e.Unwrap()
	if inner.Path.String() != "m.f.x" {
		t.Errorf("shadowed path %q, want m.f.x", inner.Path.String())
	}

	s.PopFrame()

	outer := s.LookupElemM("x").Unwrap()
	if inner.ExtraKey == outer.ExtraKey {
		t.Errorf("shadowed declarations share extraKey %d", inner.ExtraKey)
	}
}

func Test_Scope_ReinsertReplaces(t *testing.T) {
	s := New[int]()
	s.PushFrame("m", false)
	s.InsertElem("x", 1)
	s.InsertElem("x", 2)

	if got := s.LookupLocalIdentM("x").Unwrap().Meta; got != 2 {
		t.Errorf("re-insertion kept %d, want 2", got)
	}
}

func Test_Scope_LocalMissesOuter(t *testing.T) {
	s := New[int]()
	s.PushFrame("m", false)
	s.InsertElem("x", 1)
	s.PushFrame("blk", false)

	if s.LookupLocalIdentM("x").HasValue() {
		t.Error("local lookup found an enclosing frame's declaration")
	}
}

func Test_Scope_WithinProcedure(t *testing.T) {
	s := New[int]()
	s.PushFrame("m", false)

	if s.WithinProcedureM() {
		t.Error("module frame reported as procedural")
	}

	s.PushFrame("f", true)

	if !s.WithinProcedureM() {
		t.Error("function frame not reported as procedural")
	}

	s.PopFrame()

	if s.WithinProcedureM() {
		t.Error("popped procedural frame still reported")
	}
}

func Test_Scope_LookupLHS(t *testing.T) {
	s := New[int]()
	s.PushFrame("m", false)
	s.InsertElem("mem", 7)

	l := &ast.LHSIndex{Base: &ast.LHSIdent{Name: "mem"}, Index: &ast.Number{Text: "0"}}

	e := s.LookupLHS(l)
	if e.IsEmpty() {
		t.Fatal("LHS base identifier not resolved")
	}

	entry := e.Unwrap()
	if entry.Meta != 7 || entry.Path.String() != "m.mem" {
		t.Errorf("LHS lookup got (%s, %d), want (m.mem, 7)", entry.Path.String(), entry.Meta)
	}
}

func Test_Scope_SnapshotIsFrozen(t *testing.T) {
	s := New[int]()
	s.PushFrame("m", false)
	s.InsertElem("x", 1)

	snap := s.Snapshot()
	s.InsertElem("x", 2)

	if got := snap.LookupElemM("x").Unwrap().Meta; got != 1 {
		t.Errorf("snapshot observed later insertion: got %d, want 1", got)
	}
}

func Test_Scope_ExtractMapping(t *testing.T) {
	s := New[string]()
	s.PushFrame("p", false)
	s.InsertElem("a", "one")
	s.PushFrame("f", true)
	s.InsertElem("a", "two")
	s.InsertElem("b", "three")

	m := s.ExtractMapping()

	if m["a"] != "two" {
		t.Errorf("inner declaration did not win: got %q", m["a"])
	}

	if m["b"] != "three" {
		t.Errorf("missing mapping for b: got %q", m["b"])
	}
}

func Test_ShortHash_Deterministic(t *testing.T) {
	a := ShortHash("m", "x")
	b := ShortHash("m", "x")

	if a != b {
		t.Errorf("hash of identical inputs differs: %s vs %s", a, b)
	}
}

func Test_ShortHash_DistinguishesInputs(t *testing.T) {
	if ShortHash("m", "x") == ShortHash("m", "y") {
		t.Error("distinct inputs hash identically")
	}

	if ShortHash("a", "bc") == ShortHash("ab", "c") {
		t.Error("segment boundaries not separated in hash input")
	}
}

func Test_EmbedScopes(t *testing.T) {
	s := New[int]()
	s.PushFrame("m", false)
	s.InsertElem("x", 5)

	got := EmbedScopes(s, "x", func(sn *Snapshot[int], name string) string {
		if e := sn.LookupElemM(name); e.HasValue() && e.Unwrap().Meta == 5 {
			return "found"
		}

		return "missing"
	})

	if got != "found" {
		t.Errorf("embedded rewriter could not resolve through snapshot: %s", got)
	}
}
