package ipvar

import "testing"

func parseSet(t *testing.T, table *Table, token string) *Set {
	t.Helper()
	set := &Set{}
	if st := table.AddToVar(set, token); st != Success {
		t.Fatalf("AddToVar(%q) = %s", token, st)
	}
	return set
}

func TestParseAny(t *testing.T) {
	set := parseSet(t, NewTable(), "any")
	if !set.HasAny() {
		t.Error("expected HasAny")
	}
	if set.Empty() {
		t.Error("any set should not be empty")
	}
}

func TestParseCIDR(t *testing.T) {
	set := parseSet(t, NewTable(), "10.1.2.0/24")
	if len(set.Head) != 1 || len(set.Neg) != 0 {
		t.Fatalf("expected 1 positive node, got %d/%d", len(set.Head), len(set.Neg))
	}
	if set.HasAny() {
		t.Error("cidr set should not be any")
	}
}

func TestParseHostAddress(t *testing.T) {
	set := parseSet(t, NewTable(), "192.168.1.1")
	if len(set.Head) != 1 {
		t.Fatalf("expected 1 node, got %d", len(set.Head))
	}
	if got := set.Head[0].Prefix.Bits(); got != 32 {
		t.Errorf("expected /32, got /%d", got)
	}
}

func TestParseIPv6(t *testing.T) {
	set := parseSet(t, NewTable(), "2001:db8::/32")
	if len(set.Head) != 1 {
		t.Fatalf("expected 1 node, got %d", len(set.Head))
	}
}

func TestParseList(t *testing.T) {
	set := parseSet(t, NewTable(), "[10.0.0.0/8,192.168.0.0/16,!10.1.1.0/24]")
	if len(set.Head) != 2 {
		t.Errorf("expected 2 positive nodes, got %d", len(set.Head))
	}
	if len(set.Neg) != 1 {
		t.Errorf("expected 1 negated node, got %d", len(set.Neg))
	}
}

func TestParseNestedList(t *testing.T) {
	set := parseSet(t, NewTable(), "[10.0.0.0/8,[172.16.0.0/12,192.168.0.0/16]]")
	if len(set.Head) != 3 {
		t.Errorf("expected 3 positive nodes, got %d", len(set.Head))
	}
}

func TestNotAny(t *testing.T) {
	set := &Set{}
	if st := NewTable().AddToVar(set, "!any"); st != NotAny {
		t.Errorf("expected NotAny, got %s", st)
	}
}

func TestLookupFailure(t *testing.T) {
	set := &Set{}
	if st := NewTable().AddToVar(set, "$UNDEFINED"); st != LookupFailure {
		t.Errorf("expected LookupFailure, got %s", st)
	}
}

func TestConflict(t *testing.T) {
	set := &Set{}
	st := NewTable().AddToVar(set, "[10.1.1.0/24,!10.0.0.0/8]")
	if st != Conflict {
		t.Errorf("expected Conflict, got %s", st)
	}
}

func TestNoConflictWhenNegationNarrower(t *testing.T) {
	parseSet(t, NewTable(), "[10.0.0.0/8,!10.1.1.0/24]")
}

func TestParseGarbage(t *testing.T) {
	set := &Set{}
	if st := NewTable().AddToVar(set, "not-an-address"); st != Failure {
		t.Errorf("expected Failure, got %s", st)
	}
}

func TestUnbalancedList(t *testing.T) {
	set := &Set{}
	if st := NewTable().AddToVar(set, "[10.0.0.0/8"); st != Failure {
		t.Errorf("expected Failure, got %s", st)
	}
}

func TestDefineAndLookup(t *testing.T) {
	table := NewTable()
	if st := table.Define("HOME_NET", "[10.0.0.0/8,192.168.0.0/16]"); st != Success {
		t.Fatalf("Define = %s", st)
	}

	v := table.Lookup("$HOME_NET")
	if v == nil {
		t.Fatal("expected lookup hit with $ prefix")
	}
	if v.Name != "HOME_NET" {
		t.Errorf("expected name preserved, got %q", v.Name)
	}
	if table.Lookup("HOME_NET") != v {
		t.Error("bare-name lookup should return the same set")
	}
}

func TestVarReferenceInList(t *testing.T) {
	table := NewTable()
	if st := table.Define("DNS", "10.9.9.9"); st != Success {
		t.Fatalf("Define = %s", st)
	}
	set := parseSet(t, table, "[$DNS,10.0.0.0/8]")
	if len(set.Head) != 2 {
		t.Errorf("expected 2 positive nodes, got %d", len(set.Head))
	}
}

func TestNegatedVarReference(t *testing.T) {
	table := NewTable()
	if st := table.Define("EXTERNAL", "203.0.113.0/24"); st != Success {
		t.Fatalf("Define = %s", st)
	}
	set := parseSet(t, table, "!$EXTERNAL")
	if len(set.Neg) != 1 {
		t.Errorf("expected 1 negated node, got %d", len(set.Neg))
	}
}

func TestNegatedAnyVar(t *testing.T) {
	table := NewTable()
	if st := table.Define("ALL", "any"); st != Success {
		t.Fatalf("Define = %s", st)
	}
	set := &Set{}
	if st := table.AddToVar(set, "!$ALL"); st != NotAny {
		t.Errorf("expected NotAny, got %s", st)
	}
}

func TestEqual(t *testing.T) {
	table := NewTable()
	a := parseSet(t, table, "[10.0.0.0/8,!10.1.1.0/24]")
	b := parseSet(t, table, "[10.0.0.0/8,!10.1.1.0/24]")
	c := parseSet(t, table, "[192.168.0.0/16]")

	if !Equal(a, b) {
		t.Error("structurally equal sets should compare equal")
	}
	if Equal(a, c) {
		t.Error("different sets should not compare equal")
	}
}

func TestEqualOrderInsensitive(t *testing.T) {
	table := NewTable()
	a := parseSet(t, table, "[10.0.0.0/8,192.168.0.0/16]")
	b := parseSet(t, table, "[192.168.0.0/16,10.0.0.0/8]")
	if !Equal(a, b) {
		t.Error("order should not affect equality")
	}
}

func TestEmpty(t *testing.T) {
	set := &Set{}
	if !set.Empty() {
		t.Error("fresh set should be empty")
	}
	var nilSet *Set
	if !nilSet.Empty() {
		t.Error("nil set should be empty")
	}
}
