package normalize

import "github.com/ava12/gramatch"

// Error codes used by normalize. The pipeline itself never rejects a well-
// formed ir.Grammar; these guard internal invariants broken upstream (a
// front-end that built a RuleRef to a non-existent rule, say).
const (
	DanglingRuleRefError = gramatch.NormalizeErrors + iota
)

func danglingRuleRefError(ruleID int32) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindUsage, DanglingRuleRefError, "rule ref to undefined rule id %d", ruleID)
}
