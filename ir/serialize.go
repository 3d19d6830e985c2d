package ir

import (
	"encoding/json"

	"github.com/ava12/gramatch"
)

const schemaVersion = "v2"

// Error codes used by ir's (de)serializer.
const (
	VersionMismatchError = gramatch.SerializeErrors + iota
	MissingFieldError
	MalformedArenaError
)

// MarshalJSON encodes Rule as the 3-element tuple spec.md §6.2 describes
// (`[name, body_expr_id, lookahead_expr_id]`).
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{r.Name, r.BodyID, r.LookaheadID})
}

// UnmarshalJSON decodes the 3-element tuple form back into a Rule.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var tuple [3]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &r.Name); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[1], &r.BodyID); err != nil {
		return err
	}
	return json.Unmarshal(tuple[2], &r.LookaheadID)
}

type arenaJSON struct {
	Data   []int32 `json:"data_"`
	Indptr []int32 `json:"indptr_"`
	Kinds  []int32 `json:"kinds_"`
}

type tagDispatchJSON struct {
	Tags              []TagDispatchRule `json:"tags"`
	StopEos           bool              `json:"stop_eos"`
	StopStrings       []string          `json:"stop_str"`
	LoopAfterDispatch bool              `json:"loop_after_dispatch"`
	Excludes          []string          `json:"excludes"`
}

type grammarJSON struct {
	Rules             []Rule            `json:"rules_"`
	ExprData          arenaJSON         `json:"grammar_expr_data_"`
	RootRuleID        int32             `json:"root_rule_id_"`
	TagDispatches     []tagDispatchJSON `json:"tag_dispatches_"`
	AllowEmptyRuleIDs []int32           `json:"allow_empty_rule_ids"`
	Version           string            `json:"__VERSION__"`
}

// Serialize encodes g per spec.md §6.2.
func Serialize(g *Grammar) ([]byte, error) {
	kinds := make([]int32, len(g.Arena.Kinds))
	for i, k := range g.Arena.Kinds {
		kinds[i] = int32(k)
	}

	tds := make([]tagDispatchJSON, len(g.TagDispatches))
	for i, td := range g.TagDispatches {
		tds[i] = tagDispatchJSON{
			Tags:              td.Tags,
			StopEos:           td.StopEos,
			StopStrings:       td.StopStrings,
			LoopAfterDispatch: td.LoopAfterDispatch,
			Excludes:          td.Excludes,
		}
	}

	var allowEmpty []int32
	for id, ok := range g.AllowEmptyRuleIDs {
		if ok {
			allowEmpty = append(allowEmpty, id)
		}
	}

	out := grammarJSON{
		Rules: g.Rules,
		ExprData: arenaJSON{
			Data:   g.Arena.Data,
			Indptr: g.Arena.Indptr,
			Kinds:  kinds,
		},
		RootRuleID:        g.RootRuleID,
		TagDispatches:     tds,
		AllowEmptyRuleIDs: allowEmpty,
		Version:           schemaVersion,
	}
	return json.Marshal(out)
}

// Deserialize decodes a grammar previously produced by Serialize.
func Deserialize(data []byte) (*Grammar, error) {
	var in grammarJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, gramatch.FormatError(gramatch.KindUsage, MalformedArenaError, "malformed grammar JSON: %s", err)
	}
	if in.Version == "" {
		return nil, gramatch.FormatError(gramatch.KindVersion, MissingFieldError, "missing __VERSION__ field")
	}
	if in.Version != schemaVersion {
		return nil, gramatch.FormatError(gramatch.KindVersion, VersionMismatchError, "unsupported grammar version %q, expected %q", in.Version, schemaVersion)
	}
	if len(in.ExprData.Indptr) == 0 {
		return nil, gramatch.FormatError(gramatch.KindUsage, MissingFieldError, "missing grammar_expr_data_.indptr_")
	}

	kinds := make([]ExprKind, len(in.ExprData.Kinds))
	for i, k := range in.ExprData.Kinds {
		kinds[i] = ExprKind(k)
	}

	g := &Grammar{
		Rules:      in.Rules,
		RootRuleID: in.RootRuleID,
		Arena: Arena{
			Kinds:  kinds,
			Data:   in.ExprData.Data,
			Indptr: in.ExprData.Indptr,
		},
	}

	g.TagDispatches = make([]TagDispatchData, len(in.TagDispatches))
	for i, td := range in.TagDispatches {
		g.TagDispatches[i] = TagDispatchData{
			Tags:              td.Tags,
			StopEos:           td.StopEos,
			StopStrings:       td.StopStrings,
			LoopAfterDispatch: td.LoopAfterDispatch,
			Excludes:          td.Excludes,
		}
	}

	if len(in.AllowEmptyRuleIDs) > 0 {
		g.AllowEmptyRuleIDs = make(map[int32]bool, len(in.AllowEmptyRuleIDs))
		for _, id := range in.AllowEmptyRuleIDs {
			g.AllowEmptyRuleIDs[id] = true
		}
	}

	return g, nil
}
