package pattern

import "testing"

func Test_Parse_01_ConstantFold(t *testing.T) {
	rules, err := ParseRules("(rule (add ?x 0) ?x)")
	if err != nil {
		t.Fatal(err)
	}

	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	lhs, ok := rules[0].LHS.(List)
	if !ok || lhs.Head != "add" || len(lhs.Children) != 2 {
		t.Fatalf("unexpected LHS shape: %#v", rules[0].LHS)
	}

	if _, ok := lhs.Children[0].(Place); !ok {
		t.Fatalf("expected first child to be a place")
	}

	if c, ok := lhs.Children[1].(Constant); !ok || c.Value != 0 {
		t.Fatalf("expected second child to be constant 0")
	}

	if _, ok := rules[0].RHS.(Place); !ok {
		t.Fatalf("expected RHS to be a bare place")
	}
}

func Test_Parse_02_PlaceReuse(t *testing.T) {
	rules, err := ParseRules("(rule (xor ?x ?x) (const 0))")
	if err != nil {
		t.Fatal(err)
	}

	places := Places(rules[0].LHS)
	if len(places) != 1 || places[0] != "x" {
		t.Fatalf("expected a single place \"x\", got %v", places)
	}
}

func Test_Parse_03_MultipleRulesAndComments(t *testing.T) {
	src := `
; identity rule
(rule (add ?x 0) ?x)
; double negation
(rule (not (not ?x)) ?x)
`
	rules, err := ParseRules(src)
	if err != nil {
		t.Fatal(err)
	}

	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
}

func Test_Parse_04_LabelParsesButUnimplemented(t *testing.T) {
	rules, err := ParseRules("(rule (label foo ?x) ?x)")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := rules[0].LHS.(Label); !ok {
		t.Fatalf("expected a Label pattern, got %#v", rules[0].LHS)
	}
}

func Test_Parse_05_MalformedRuleFails(t *testing.T) {
	if _, err := ParseRules("(rule (add ?x 0))"); err == nil {
		t.Fatalf("expected a parse error for a rule missing RHS")
	}
}

func Test_Parse_06_EntireSetRejectedOnOneBadRule(t *testing.T) {
	src := "(rule (add ?x 0) ?x)\n(rule (bad))"

	if _, err := ParseRules(src); err == nil {
		t.Fatalf("expected the whole rule set to be rejected")
	}
}
