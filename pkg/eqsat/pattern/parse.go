package pattern

import (
	"fmt"
	"strconv"

	"github.com/trailofbits/circuitous-go/pkg/sexp"
)

// ParseRules parses a rule-set source text of the form
//
//	(rule LHS RHS)
//	(rule LHS RHS)
//	...
//
// into a slice of Rules.  A syntax error anywhere in the text invalidates
// the whole rule set — there is no partial result — matching the spec's
// RuleParseFailed policy.  Encountering `label` is not itself a parse
// error (the syntax is well-formed); it surfaces later, as
// ErrUnimplementedPatternNode, the first time the rule is matched or
// applied.
func ParseRules(src string) ([]Rule, error) {
	exprs, err := sexp.ParseAll(src)
	if err != nil {
		if se, ok := err.(*sexp.SyntaxError); ok {
			return nil, &ErrRuleParseFailed{Offset: se.Span().Start(), Reason: se.Message()}
		}

		return nil, &ErrRuleParseFailed{Reason: err.Error()}
	}

	rules := make([]Rule, 0, len(exprs))

	for i, e := range exprs {
		rule, err := parseRule(e)
		if err != nil {
			return nil, err
		}

		rule.Name = fmt.Sprintf("rule%d", i)
		rules = append(rules, rule)
	}

	return rules, nil
}

func parseRule(e sexp.SExp) (Rule, error) {
	list, ok := e.(*sexp.List)
	if !ok || !list.MatchSymbols(1, "rule") || len(list.Elements) != 3 {
		return Rule{}, &ErrRuleParseFailed{Reason: "expected (rule LHS RHS), got " + e.String()}
	}

	lhs, err := parseExpr(list.Elements[1])
	if err != nil {
		return Rule{}, err
	}

	rhs, err := parseExpr(list.Elements[2])
	if err != nil {
		return Rule{}, err
	}

	return Rule{LHS: lhs, RHS: rhs}, nil
}

// parseExpr converts a single s-expression into a Pattern.  Syntax
// (well-formedness) errors are reported as ErrRuleParseFailed; the
// `label` construct is syntactically well-formed but semantically
// unimplemented, so it parses successfully into a Label node rather than
// failing here.
func parseExpr(e sexp.SExp) (Pattern, error) {
	switch n := e.(type) {
	case *sexp.Symbol:
		return parseAtom(n.Value), nil
	case *sexp.List:
		return parseList(n)
	default:
		return nil, &ErrRuleParseFailed{Reason: "unrecognised expression " + e.String()}
	}
}

func parseAtom(value string) Pattern {
	if len(value) > 1 && value[0] == '?' {
		return Place{Name: value[1:]}
	}

	if v, err := strconv.ParseInt(value, 10, 64); err == nil {
		return Constant{Value: v}
	}

	return Op{Tag: value}
}

func parseList(l *sexp.List) (Pattern, error) {
	if len(l.Elements) == 0 {
		return nil, &ErrRuleParseFailed{Reason: "empty list"}
	}

	head, ok := l.Elements[0].(*sexp.Symbol)
	if !ok {
		return nil, &ErrRuleParseFailed{Reason: "list head must be a symbol, got " + l.Elements[0].String()}
	}

	if head.Value == "label" {
		return parseLabel(l)
	}

	children := make([]Pattern, len(l.Elements)-1)

	for i, c := range l.Elements[1:] {
		child, err := parseExpr(c)
		if err != nil {
			return nil, err
		}

		children[i] = child
	}

	return List{Head: head.Value, Children: children}, nil
}

func parseLabel(l *sexp.List) (Pattern, error) {
	if len(l.Elements) != 3 {
		return nil, &ErrRuleParseFailed{Reason: "expected (label name pattern)"}
	}

	name, ok := l.Elements[1].(*sexp.Symbol)
	if !ok {
		return nil, &ErrRuleParseFailed{Reason: "label name must be a symbol"}
	}

	inner, err := parseExpr(l.Elements[2])
	if err != nil {
		return nil, err
	}

	return Label{Name: name.Value, Pattern: inner}, nil
}
