package structuraltag

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// placeholderRe matches `{{name.path.to.value}}` and `{{name[].path}}`; the
// latter is a list placeholder whose per-element value is substituted once
// per kwargs[name] element when a tag template is repeated.
var placeholderRe = regexp.MustCompile(`\{\{(\w+)(\[\])?(\.[\w.]+)?\}\}`)

// ExpandTriggeredTags replaces n.Tags with the result of expanding every
// template tag against kwargs (see expandTagTemplates), mirroring
// structural_tag_for_model.py's per-tool list-comprehension expansion.
func ExpandTriggeredTags(n *TriggeredTags, kwargs map[string]any) error {
	expanded, err := expandTagTemplates(n.Tags, kwargs)
	if err != nil {
		return err
	}
	n.Tags = expanded
	return nil
}

// ExpandTagsWithSeparator is ExpandTriggeredTags for TagsWithSeparator.Tags.
func ExpandTagsWithSeparator(n *TagsWithSeparator, kwargs map[string]any) error {
	expanded, err := expandTagTemplates(n.Tags, kwargs)
	if err != nil {
		return err
	}
	n.Tags = expanded
	return nil
}

// expandTagTemplates expands each tag independently. A tag referencing no
// list placeholder is substituted once in place; a tag referencing exactly
// one list placeholder name is repeated once per element of that kwargs
// list; a tag whose strings reference more than one distinct list
// placeholder name is rejected (a single repeated tag can only be driven by
// one list).
func expandTagTemplates(tags []*Tag, kwargs map[string]any) ([]*Tag, error) {
	var out []*Tag
	for _, tag := range tags {
		listNames := collectListNames(tag)
		switch len(listNames) {
		case 0:
			expanded, err := cloneAndSubstitute(tag, kwargs, "", nil)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded.(*Tag))

		case 1:
			listName := listNames[0]
			elems, ok := kwargs[listName].([]any)
			if !ok {
				return nil, placeholderNotFoundError(listName)
			}
			for _, elem := range elems {
				expanded, err := cloneAndSubstitute(tag, kwargs, listName, elem)
				if err != nil {
					return nil, err
				}
				out = append(out, expanded.(*Tag))
			}

		default:
			return nil, mingledPlaceholderNamesError()
		}
	}
	return out, nil
}

// collectStrings gathers every literal string embedded in f, descending
// through Content the same way convert.go's converter does.
func collectStrings(f Format) []string {
	switch n := f.(type) {
	case *ConstString:
		return []string{n.Value}
	case *JSONSchema:
		return []string{string(n.Schema)}
	case *Regex:
		return []string{n.Pattern}
	case *EBNF:
		return []string{n.Grammar}
	case *QwenXMLParameter:
		return []string{string(n.Schema)}
	case *AnyText:
		return append([]string(nil), n.Excludes...)
	case *Sequence:
		var out []string
		for _, el := range n.Elements {
			out = append(out, collectStrings(el)...)
		}
		return out
	case *Or:
		var out []string
		for _, el := range n.Elements {
			out = append(out, collectStrings(el)...)
		}
		return out
	case *Tag:
		out := []string{n.Begin}
		out = append(out, collectStrings(n.Content)...)
		out = append(out, n.End...)
		return out
	}
	return nil
}

func collectListNames(f Format) []string {
	seen := map[string]bool{}
	var names []string
	for _, s := range collectStrings(f) {
		for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
			if m[2] == "[]" && !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	return names
}

// cloneAndSubstitute deep-copies f, substituting every placeholder in its
// embedded strings. listName/elem supply the current list-expansion
// context; an empty listName means this tag carried no list placeholder.
func cloneAndSubstitute(f Format, kwargs map[string]any, listName string, elem any) (Format, error) {
	switch n := f.(type) {
	case *ConstString:
		v, err := expandString(n.Value, kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		return &ConstString{Value: v}, nil

	case *JSONSchema:
		v, err := expandString(string(n.Schema), kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		return &JSONSchema{Schema: json.RawMessage(v)}, nil

	case *Regex:
		v, err := expandString(n.Pattern, kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		return &Regex{Pattern: v}, nil

	case *EBNF:
		v, err := expandString(n.Grammar, kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		return &EBNF{Grammar: v}, nil

	case *QwenXMLParameter:
		v, err := expandString(string(n.Schema), kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		return &QwenXMLParameter{Schema: json.RawMessage(v)}, nil

	case *AnyText:
		excl, err := expandStrings(n.Excludes, kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		return &AnyText{Excludes: excl}, nil

	case *Sequence:
		els := make([]Format, len(n.Elements))
		for i, el := range n.Elements {
			ne, err := cloneAndSubstitute(el, kwargs, listName, elem)
			if err != nil {
				return nil, err
			}
			els[i] = ne
		}
		return &Sequence{Elements: els}, nil

	case *Or:
		els := make([]Format, len(n.Elements))
		for i, el := range n.Elements {
			ne, err := cloneAndSubstitute(el, kwargs, listName, elem)
			if err != nil {
				return nil, err
			}
			els[i] = ne
		}
		return &Or{Elements: els}, nil

	case *Tag:
		begin, err := expandString(n.Begin, kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		content, err := cloneAndSubstitute(n.Content, kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		ends, err := expandStrings(n.End, kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		return &Tag{Begin: begin, Content: content, End: ends}, nil
	}
	return nil, fmt.Errorf("structuraltag: %T cannot be nested inside a templated tag", f)
}

func expandStrings(ss []string, kwargs map[string]any, listName string, elem any) ([]string, error) {
	out := make([]string, len(ss))
	for i, s := range ss {
		v, err := expandString(s, kwargs, listName, elem)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// expandString substitutes every placeholder in s. A string referencing two
// differently-named placeholders is rejected outright, regardless of list
// expansion state.
func expandString(s string, kwargs map[string]any, listName string, elem any) (string, error) {
	matches := placeholderRe.FindAllStringSubmatch(s, -1)
	if len(matches) > 0 {
		names := map[string]bool{}
		for _, m := range matches {
			names[m[1]] = true
		}
		if len(names) > 1 {
			return "", multiplePlaceholderNamesError()
		}
	}

	var outErr error
	result := placeholderRe.ReplaceAllStringFunc(s, func(raw string) string {
		if outErr != nil {
			return raw
		}
		m := placeholderRe.FindStringSubmatch(raw)
		name, isList, path := m[1], m[2] == "[]", m[3]

		var base any
		if isList {
			if name != listName {
				outErr = mingledPlaceholderNamesError()
				return raw
			}
			base = elem
		} else {
			v, ok := kwargs[name]
			if !ok {
				outErr = placeholderNotFoundError(name)
				return raw
			}
			base = v
		}

		val, err := resolvePath(base, path)
		if err != nil {
			outErr = err
			return raw
		}
		return val
	})
	if outErr != nil {
		return "", outErr
	}
	return result, nil
}

// resolvePath walks base through path's `.`-separated segments (path may be
// empty) and renders the final value as the text to splice into the output
// string: verbatim if it is already a string, JSON-encoded otherwise.
func resolvePath(base any, path string) (string, error) {
	cur := base
	if path != "" {
		for _, seg := range strings.Split(strings.TrimPrefix(path, "."), ".") {
			m, ok := cur.(map[string]any)
			if !ok {
				return "", placeholderNotFoundError(seg)
			}
			v, ok := m[seg]
			if !ok {
				return "", placeholderNotFoundError(seg)
			}
			cur = v
		}
	}
	if s, ok := cur.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(cur)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
