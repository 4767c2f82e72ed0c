package sexp

import "testing"

func Test_Sexp_01_Symbol(t *testing.T) {
	e, err := Parse("hello")
	if err != nil {
		t.Fatal(err)
	}

	if !e.IsSymbol() || e.String() != "hello" {
		t.Fatalf("expected symbol %q, got %q", "hello", e.String())
	}
}

func Test_Sexp_02_EmptyList(t *testing.T) {
	e, err := Parse("()")
	if err != nil {
		t.Fatal(err)
	}

	if !e.IsList() || e.(*List).Len() != 0 {
		t.Fatalf("expected empty list, got %q", e.String())
	}
}

func Test_Sexp_03_NestedList(t *testing.T) {
	e, err := Parse("(add (const 1) ?x)")
	if err != nil {
		t.Fatal(err)
	}

	list, ok := e.(*List)
	if !ok || list.Len() != 3 {
		t.Fatalf("expected a 3-element list, got %q", e.String())
	}

	if !list.MatchSymbols(1, "add") {
		t.Fatalf("expected head symbol \"add\"")
	}
}

func Test_Sexp_04_CommentsIgnored(t *testing.T) {
	e, err := Parse("; a comment\n(xor ?x ?x) ; trailing comment")
	if err != nil {
		t.Fatal(err)
	}

	if e.String() != "(xor,?x,?x)" {
		t.Fatalf("unexpected parse result: %q", e.String())
	}
}

func Test_Sexp_05_ParseAll(t *testing.T) {
	terms, err := ParseAll("(rule a b)\n(rule c d)")
	if err != nil {
		t.Fatal(err)
	}

	if len(terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(terms))
	}
}

func Test_Sexp_06_UnexpectedCloseParen(t *testing.T) {
	if _, err := Parse(")"); err == nil {
		t.Fatalf("expected a syntax error on a stray close-paren")
	}
}

func Test_Sexp_07_UnterminatedList(t *testing.T) {
	if _, err := Parse("(add 1 2"); err == nil {
		t.Fatalf("expected a syntax error on an unterminated list")
	}
}
