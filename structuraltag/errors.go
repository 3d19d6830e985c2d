package structuraltag

import "github.com/ava12/gramatch"

// Error codes used by structuraltag. Mirrors the one-constructor-per-fatal-
// condition idiom used by ebnf and rx.
const (
	UnboundedNotInTailError = gramatch.StructuralTagErrors + iota
	MixedBoundedOrError
	UnboundedTagContentNoEndError
	TriggerMatchError
	TemplateMultiplePlaceholderNamesError
	TemplatePlaceholderNotFoundError
	TemplateMingledPlaceholderNamesError
	InvalidQwenXMLSchemaError
)

func unboundedNotInTailError() *gramatch.Error {
	return gramatch.FormatError(gramatch.KindStructuralTag, UnboundedNotInTailError,
		"an unbounded element must be the last element of a sequence")
}

func mixedBoundedOrError() *gramatch.Error {
	return gramatch.FormatError(gramatch.KindStructuralTag, MixedBoundedOrError,
		"all elements of an alternation must share the same boundedness")
}

func unboundedTagContentNoEndError() *gramatch.Error {
	return gramatch.FormatError(gramatch.KindStructuralTag, UnboundedTagContentNoEndError,
		"a tag with unbounded content must have at least one non-empty end alternative")
}

func noTriggerMatchError(begin string) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindStructuralTag, TriggerMatchError,
		"tag begin %q matches no trigger", begin)
}

func ambiguousTriggerError(begin string) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindStructuralTag, TriggerMatchError,
		"tag begin %q matches more than one trigger", begin)
}

func multiplePlaceholderNamesError() *gramatch.Error {
	return gramatch.FormatError(gramatch.KindStructuralTag, TemplateMultiplePlaceholderNamesError,
		"Multiple different placeholder names found in the same string")
}

func placeholderNotFoundError(name string) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindStructuralTag, TemplatePlaceholderNotFoundError,
		"Placeholder name '%s' not found in values", name)
}

func mingledPlaceholderNamesError() *gramatch.Error {
	return gramatch.FormatError(gramatch.KindStructuralTag, TemplateMingledPlaceholderNamesError,
		"Mingled placeholder names found")
}

func invalidQwenXMLSchemaError(detail string) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindStructuralTag, InvalidQwenXMLSchemaError,
		"invalid qwen_xml_parameter schema: %s", detail)
}
