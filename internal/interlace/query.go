package interlace

import (
	"errors"
	"fmt"

	"github.com/codeninja55/dcmgraph/internal/model"
)

// ErrEmptyInput is returned when a query validates to zero modalities, or
// matches no branch at all.
var ErrEmptyInput = errors.New("interlace: query matched no results")

// canonicalOrder is the fixed modality ordering every validated query is
// reordered into before matching, regardless of the order the caller wrote
// it in.
var canonicalOrder = []string{"CT", "MR", "PT", "SEG", "RTSTRUCT", "RTDOSE"}

// requires enumerates which of a modality's prerequisites must also appear
// in the query for it to be satisfiable against the forest's edge shape:
// RTSTRUCT/SEG are always children of an image series, RTDOSE a child of
// RTSTRUCT.
var requires = map[string][][]string{
	"RTSTRUCT": {{"CT", "MR", "PT"}},
	"SEG":      {{"CT", "MR", "PT"}},
	"RTDOSE":   {{"RTSTRUCT"}},
}

// validate checks query's modalities against requires and reorders them
// into canonicalOrder. An empty or all-unknown query returns ErrEmptyInput.
func validate(query []string) ([]string, error) {
	present := make(map[string]bool, len(query))
	for _, m := range query {
		present[m] = true
	}

	for modality, groups := range requires {
		if !present[modality] {
			continue
		}
		for _, anyOf := range groups {
			ok := false
			for _, candidate := range anyOf {
				if present[candidate] {
					ok = true
					break
				}
			}
			if !ok {
				return nil, fmt.Errorf("interlace: %s requires one of %v in the query", modality, anyOf)
			}
		}
	}

	var ordered []string
	for _, m := range canonicalOrder {
		if present[m] {
			ordered = append(ordered, m)
		}
	}
	if len(ordered) == 0 {
		return nil, ErrEmptyInput
	}
	return ordered, nil
}

// Result is one matched contiguous run of a branch, grouped by the root
// node its match started at.
type Result struct {
	Root  model.SeriesUID
	Nodes []model.BranchEntry
}

// Query validates query, matches it as a contiguous subsequence against
// every branch in f, and groups the matches by the node each match starts
// at (Result.Root); an identical match found on several branches is
// returned once. Returns ErrEmptyInput if query names no supported modality
// or matches nothing, and a different error if a modality's prerequisite
// (see requires) is missing from the query.
func (f *Forest) Query(query []string) ([]Result, error) {
	ordered, err := validate(query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	byRoot := make(map[model.SeriesUID][]Result)
	var rootOrder []model.SeriesUID

	for _, branch := range f.Branches() {
		matches := branch.match(ordered)
		for _, m := range matches {
			key := matchKey(m)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			root := m[0].Series
			if _, ok := byRoot[root]; !ok {
				rootOrder = append(rootOrder, root)
			}
			byRoot[root] = append(byRoot[root], Result{Root: root, Nodes: entriesOf(m)})
		}
	}

	if len(byRoot) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([]Result, 0, len(byRoot))
	for _, root := range rootOrder {
		for _, r := range byRoot[root] {
			out = append(out, r)
		}
	}
	return out, nil
}

// match returns every contiguous run of b.Nodes whose modalities equal
// ordered exactly, scanning all starting offsets the way a substring search
// would over the modality sequence.
func (b *Branch) match(ordered []string) [][]*model.SeriesNode {
	mods := b.Modalities()
	var out [][]*model.SeriesNode

	for start := 0; start+len(ordered) <= len(mods); start++ {
		if sliceEqual(mods[start:start+len(ordered)], ordered) {
			out = append(out, b.Nodes[start:start+len(ordered)])
		}
	}
	return out
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func matchKey(nodes []*model.SeriesNode) string {
	key := ""
	for _, n := range nodes {
		key += string(n.Series) + "|"
	}
	return key
}

func entriesOf(nodes []*model.SeriesNode) []model.BranchEntry {
	out := make([]model.BranchEntry, len(nodes))
	for i, n := range nodes {
		out[i] = model.BranchEntry{Series: n.Series, Modality: n.Modality}
	}
	return out
}
