package pattern

import "fmt"

// ErrRuleParseFailed reports malformed rule-set syntax.  Per spec, a parse
// failure for any one rule invalidates the whole rule set: there is no
// partial rule-set result.
type ErrRuleParseFailed struct {
	Offset int
	Reason string
}

func (e *ErrRuleParseFailed) Error() string {
	return fmt.Sprintf("rule parse failed at offset %d: %s", e.Offset, e.Reason)
}

// ErrUnimplementedPatternNode reports a `label` (or other reserved but
// unimplemented) construct encountered while matching or applying a
// pattern.  The parser itself accepts `label` and never returns it.
type ErrUnimplementedPatternNode struct {
	Construct string
}

func (e *ErrUnimplementedPatternNode) Error() string {
	return fmt.Sprintf("unimplemented pattern construct: %s", e.Construct)
}
