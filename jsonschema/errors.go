package jsonschema

import "github.com/ava12/gramatch"

// Error codes used by jsonschema.
const (
	InvalidJSONError = gramatch.JSONSchemaErrors + iota
	UnsupportedRefError
)

func invalidJSONError(msg string) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindParse, InvalidJSONError, "jsonschema: %s", msg)
}

func unsupportedRefError(ref string) *gramatch.Error {
	return gramatch.FormatError(gramatch.KindParse, UnsupportedRefError, "jsonschema: unresolvable $ref %q", ref)
}
