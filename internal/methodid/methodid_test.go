package methodid

import "testing"

func TestParse(t *testing.T) {
	id, err := Parse("pkg/Foo.bar:(I[IZ)I")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.Class != "pkg/Foo" || id.Name != "bar" {
		t.Errorf("Class/Name = %q/%q, want pkg/Foo/bar", id.Class, id.Name)
	}
	if len(id.Args) != 3 {
		t.Fatalf("len(Args) = %d, want 3", len(id.Args))
	}
	if id.ReturnType.String() != "int" {
		t.Errorf("ReturnType = %v, want int", id.ReturnType)
	}
}

func TestParseClassNameSplitUsesLastDot(t *testing.T) {
	id, err := Parse("a/b.c.Method:(I)V")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.Class != "a/b.c" || id.Name != "Method" {
		t.Errorf("Class/Name = %q/%q, want a/b.c/Method", id.Class, id.Name)
	}
}

func TestParseRejectsMissingColon(t *testing.T) {
	if _, err := Parse("pkg/Foo.bar(I)V"); err == nil {
		t.Fatal("expected an error for a method id missing ':'")
	}
}

func TestParseRejectsMissingDot(t *testing.T) {
	if _, err := Parse("pkgFoobar:(I)V"); err == nil {
		t.Fatal("expected an error for a method id missing '.'")
	}
}

func TestBuildRoundTripsParse(t *testing.T) {
	id, err := Parse("pkg/Foo.bar:(II)Z")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	raw := Build(id.Class, id.Name, id.Args, id.ReturnType)
	again, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(Build(...)): %v", err)
	}
	if again.Class != id.Class || again.Name != id.Name || len(again.Args) != len(id.Args) {
		t.Errorf("round trip mismatch: %+v vs %+v", again, id)
	}
}

func TestIsSpecialInfo(t *testing.T) {
	if !IsSpecialInfo("info") {
		t.Error("IsSpecialInfo(\"info\") should be true")
	}
	if IsSpecialInfo("pkg/Foo.bar:()V") {
		t.Error("IsSpecialInfo should be false for an ordinary method id")
	}
}
