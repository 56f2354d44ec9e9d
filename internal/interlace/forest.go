// Package interlace builds the in-memory reference forest (C6) and answers
// modality queries against it (C7), ported from the cross-referential graph
// builder this engine supersedes: one root per CT/MR series (and any PT
// series left unreferenced by the resolver), with every referencing series
// attached as a child of the series it references.
package interlace

import (
	"sort"

	"github.com/codeninja55/dcmgraph/internal/model"
)

// GroupBy selects the policy Build uses to relate SeriesNodes to one
// another.
type GroupBy int

const (
	// GroupByReference is the default policy: nodes are linked into a
	// parent/child forest via ReferencedSeriesUID, rooted at every CT/MR
	// series plus any unreferenced PT series. Supports Branches/Query.
	GroupByReference GroupBy = iota
	// GroupByStudy groups nodes sharing a StudyUID into unordered sets,
	// with no parent/child structure.
	GroupByStudy
	// GroupByPatient groups nodes sharing a PatientID into unordered sets,
	// with no parent/child structure.
	GroupByPatient
)

// Group is an unordered set of SeriesNodes sharing a common study or
// patient, produced by GroupByStudy/GroupByPatient. Order within Nodes is
// not meaningful.
type Group struct {
	Key   string
	Nodes []*model.SeriesNode
}

// Forest is an arena of SeriesNodes, addressed by integer ID so a node
// shared by more than one branch is never aliased once DFS starts copying
// nodes into branch-local slices.
type Forest struct {
	nodes   []*model.SeriesNode
	byUID   map[model.SeriesUID]int
	rootIDs []int
	// Groups holds the unordered-set groups produced by GroupByStudy/
	// GroupByPatient. Empty under GroupByReference, where rootIDs/Branches
	// carry the structure instead.
	Groups []Group
}

// Build constructs a Forest from meta under groupBy. Only the first
// sub-series record of each SeriesUID is used to populate node attributes
// (Modality, PatientID, StudyUID): sub-series variation is a crawl-time
// detail the forest does not need to represent. Duplicate SeriesUID rows
// (more than one sub-series sharing a SeriesUID) collapse to their first
// record, matching the persisted slim index's own deduplication.
func Build(meta model.SeriesMetaMap, groupBy GroupBy) *Forest {
	f := &Forest{byUID: make(map[model.SeriesUID]int)}

	series := make([]model.SeriesUID, 0, len(meta))
	for uid := range meta {
		series = append(series, uid)
	}
	sort.Slice(series, func(i, j int) bool { return series[i] < series[j] })

	for _, uid := range series {
		rec := firstRecord(meta[uid])
		if rec == nil {
			continue
		}
		id := len(f.nodes)
		f.nodes = append(f.nodes, &model.SeriesNode{
			ID:        id,
			Series:    uid,
			Modality:  rec.Modality,
			PatientID: rec.PatientID,
			StudyUID:  rec.StudyInstanceUID,
		})
		f.byUID[uid] = id
	}

	switch groupBy {
	case GroupByStudy:
		f.Groups = groupNodes(f.nodes, func(n *model.SeriesNode) string { return string(n.StudyUID) })
	case GroupByPatient:
		f.Groups = groupNodes(f.nodes, func(n *model.SeriesNode) string { return n.PatientID })
	default:
		f.buildReferenceEdges(meta, series)
	}

	return f
}

// buildReferenceEdges wires the GroupByReference parent/child structure:
// every node with a resolvable ReferencedSeriesUID becomes a child of the
// node it references, and the root set is every CT/MR node plus any PT
// node left unreferenced.
func (f *Forest) buildReferenceEdges(meta model.SeriesMetaMap, series []model.SeriesUID) {
	for _, uid := range series {
		rec := firstRecord(meta[uid])
		if rec == nil || rec.ReferencedSeriesUID == "" {
			continue
		}
		parentID, ok := f.byUID[model.SeriesUID(rec.ReferencedSeriesUID)]
		if !ok {
			continue
		}
		childID := f.byUID[uid]
		f.nodes[parentID].AddChild(f.nodes[childID])
	}

	for _, uid := range series {
		rec := firstRecord(meta[uid])
		if rec == nil {
			continue
		}
		isRoot := rec.Modality == "CT" || rec.Modality == "MR" ||
			(rec.Modality == "PT" && rec.ReferencedSeriesUID == "")
		if isRoot {
			f.rootIDs = append(f.rootIDs, f.byUID[uid])
		}
	}
}

// groupNodes partitions nodes into Groups keyed by keyOf, in order of each
// key's first appearance, skipping nodes whose key is empty.
func groupNodes(nodes []*model.SeriesNode, keyOf func(*model.SeriesNode) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, n := range nodes {
		key := keyOf(n)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Nodes = append(groups[i].Nodes, n)
	}
	return groups
}

func firstRecord(bySub map[model.SubSeriesID]*model.SeriesRecord) *model.SeriesRecord {
	subIDs := make([]string, 0, len(bySub))
	for sub := range bySub {
		subIDs = append(subIDs, string(sub))
	}
	sort.Strings(subIDs)
	if len(subIDs) == 0 {
		return nil
	}
	return bySub[model.SubSeriesID(subIDs[0])]
}

// Branch is one root-to-leaf path through the forest, copied out of the
// arena so mutating or reordering it never affects the shared nodes.
type Branch struct {
	Nodes []*model.SeriesNode
}

// Modalities returns the branch's node modalities in path order.
func (b *Branch) Modalities() []string {
	out := make([]string, len(b.Nodes))
	for i, n := range b.Nodes {
		out[i] = n.Modality
	}
	return out
}

// Branches enumerates every root-to-leaf path in the forest via DFS, one
// SeriesNode.Copy() per node per branch so no branch shares a *SeriesNode
// pointer with another.
func (f *Forest) Branches() []*Branch {
	var branches []*Branch
	for _, rootID := range f.rootIDs {
		walk(f.nodes[rootID], nil, &branches)
	}
	return branches
}

func walk(node *model.SeriesNode, path []*model.SeriesNode, branches *[]*Branch) {
	// A fresh backing array per call: appending to a shared one across
	// sibling branches would let one branch's growth overwrite another's
	// already-recorded path.
	extended := make([]*model.SeriesNode, len(path)+1)
	copy(extended, path)
	extended[len(path)] = node.Copy()

	if len(node.Children) == 0 {
		*branches = append(*branches, &Branch{Nodes: extended})
		return
	}

	for _, child := range node.Children {
		walk(child, extended, branches)
	}
}
