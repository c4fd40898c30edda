package ports

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, s string) *Object {
	t.Helper()
	obj, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString(%q) failed: %v", s, err)
	}
	return obj
}

func TestParseSinglePort(t *testing.T) {
	obj := mustParse(t, "80")
	if len(obj.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(obj.Items))
	}
	if obj.Items[0].Lo != 80 || obj.Items[0].Hi != 80 {
		t.Errorf("expected 80:80, got %d:%d", obj.Items[0].Lo, obj.Items[0].Hi)
	}
	if obj.Count() != 1 {
		t.Errorf("expected count 1, got %d", obj.Count())
	}
}

func TestParseRange(t *testing.T) {
	obj := mustParse(t, "80:90")
	if obj.Count() != 11 {
		t.Errorf("expected count 11, got %d", obj.Count())
	}
	if !obj.Contains(85) {
		t.Error("expected range to contain 85")
	}
	if obj.Contains(91) {
		t.Error("range should not contain 91")
	}
}

func TestParseOpenRanges(t *testing.T) {
	low := mustParse(t, ":1024")
	if low.Items[0].Lo != 0 || low.Items[0].Hi != 1024 {
		t.Errorf("expected 0:1024, got %d:%d", low.Items[0].Lo, low.Items[0].Hi)
	}

	high := mustParse(t, "1024:")
	if high.Items[0].Lo != 1024 || high.Items[0].Hi != MaxPort {
		t.Errorf("expected 1024:%d, got %d:%d", MaxPort, high.Items[0].Lo, high.Items[0].Hi)
	}
}

func TestParseList(t *testing.T) {
	obj := mustParse(t, "[80,443,8000:8080]")
	if len(obj.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(obj.Items))
	}
	if obj.Count() != 83 {
		t.Errorf("expected count 83, got %d", obj.Count())
	}
}

func TestParseNestedNegation(t *testing.T) {
	obj := mustParse(t, "[80:90,!85]")
	if obj.Contains(85) {
		t.Error("negated port should not match")
	}
	if !obj.Contains(86) {
		t.Error("non-negated port should match")
	}
	if obj.IsPureNot() {
		t.Error("mixed list is not pure-not")
	}
}

func TestParsePureNot(t *testing.T) {
	obj := mustParse(t, "![80]")
	if !obj.IsPureNot() {
		t.Error("expected pure-not object")
	}
	if obj.Contains(80) {
		t.Error("negated port should not match")
	}
	if !obj.Contains(81) {
		t.Error("pure-not should match the complement")
	}
	if obj.Count() != MaxPort {
		t.Errorf("expected count %d, got %d", MaxPort, obj.Count())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"80:70",
		"65536",
		"80,,90",
		"[80",
		"80]",
		"80 90",
		"abc",
		"!",
	}
	for _, c := range cases {
		if _, err := ParseString(c); err == nil {
			t.Errorf("ParseString(%q) should fail", c)
		}
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := ParseString("80:xyz")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Pos != 3 {
		t.Errorf("expected error at 3, got %d", perr.Pos)
	}
}

func TestEqualPorts(t *testing.T) {
	a := mustParse(t, "[80,443]")
	b := mustParse(t, "[443,80]")
	c := mustParse(t, "[80,444]")

	if !a.EqualPorts(b) {
		t.Error("order should not affect port set equality")
	}
	if a.EqualPorts(c) {
		t.Error("different sets should not compare equal")
	}
}

func TestDup(t *testing.T) {
	a := mustParse(t, "[80,443]")
	a.AddRule(7)

	dup := a.Dup()
	if !a.EqualPorts(dup) {
		t.Error("dup should preserve the port set")
	}
	if dup.RuleCount() != 0 {
		t.Error("dup should not carry rule attachments")
	}
}

func TestAddRuleAppendOnly(t *testing.T) {
	obj := mustParse(t, "80")
	obj.AddRule(3)
	obj.AddRule(1)
	obj.AddRule(3)

	got := obj.Rules()
	if len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("expected [3 1], got %v", got)
	}
}

func TestTableDedup(t *testing.T) {
	table := NewTable()

	a := mustParse(t, "[80,443]")
	if err := table.Add(a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	b := mustParse(t, "[443,80]")
	if got := table.FindByPorts(b); got != a {
		t.Error("expected lookup to return the resident object")
	}

	if err := table.Add(b); err == nil {
		t.Error("adding an equal port set should fail")
	}

	if table.Len() != 1 {
		t.Errorf("expected 1 object, got %d", table.Len())
	}
}

func TestVarTableAny(t *testing.T) {
	vt := NewVarTable()

	anyObj := vt.Find("any")
	if anyObj == nil {
		t.Fatal("var table should carry the any object")
	}
	if !anyObj.HasAny() {
		t.Error("any object should have the any flag")
	}
	if anyObj.Count() != MaxPort+1 {
		t.Errorf("expected full port space, got %d", anyObj.Count())
	}
}

func TestVarTableDefine(t *testing.T) {
	vt := NewVarTable()

	if err := vt.Define("HTTP_PORTS", "[80,8080]"); err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	obj := vt.Find("HTTP_PORTS")
	if obj == nil {
		t.Fatal("expected lookup hit")
	}
	if obj.Name != "HTTP_PORTS" {
		t.Errorf("expected name bound, got %q", obj.Name)
	}

	if err := vt.Define("HTTP_PORTS", "80"); err == nil {
		t.Error("redefinition should fail")
	}
	if err := vt.Define("BAD", "99999"); err == nil {
		t.Error("bad spec should fail")
	}
}
