// Package resolve implements the reference-resolution stage (C4): a pure
// mutation pass over an already-crawled SeriesMetaMap that fills in each
// record's ReferencedSeriesUID and ReferencedModality.
//
// Unlike the system this engine indexes, which breaks ties between multiple
// candidate series arbitrarily (a Python set.pop()), this resolver always
// picks the lexicographically smallest SeriesUID so two runs over the same
// input produce byte-identical output.
package resolve

import (
	"sort"

	"github.com/codeninja55/dcmgraph/internal/model"
)

// referencingModalities resolve through a SOP->Series lookup rather than a
// direct FrameOfReference match.
var referencingModalities = map[string]bool{
	"SEG":      true,
	"RTSTRUCT": true,
	"RTDOSE":   true,
	"RTPLAN":   true,
}

// Run mutates every record in meta in place, filling ReferencedSeriesUID
// and ReferencedModality. sopToSeries must already contain every instance
// crawled, not just those belonging to referencing modalities.
func Run(meta model.SeriesMetaMap, sopToSeries model.SopSeriesMap) {
	forIndex := buildFrameOfReferenceIndex(meta)

	meta.All(func(series model.SeriesUID, sub model.SubSeriesID, rec *model.SeriesRecord) {
		switch {
		case rec.Modality == "SR":
			resolveViaDirectSeriesUID(rec)
		case referencingModalities[rec.Modality]:
			resolveViaSOP(rec, sopToSeries)
		case rec.Modality == "PT":
			resolveViaFrameOfReference(rec, forIndex)
		}
	})

	// Post-pass: now that every ReferencedSeriesUID is set, compute
	// ReferencedModality by looking up the referenced series' own modality.
	// SR may reference more than one distinct series; its ReferencedModality
	// joins every referenced series' modality with "|".
	meta.All(func(series model.SeriesUID, sub model.SubSeriesID, rec *model.SeriesRecord) {
		rec.ReferencedModality = referencedModality(rec, meta)
	})
}

// resolveViaSOP maps a record's referenced SOPInstanceUID(s) back to the
// series that contains them, picking the canonical reference field for each
// modality and breaking ties deterministically when more than one distinct
// series is found.
func resolveViaSOP(rec *model.SeriesRecord, sopToSeries model.SopSeriesMap) {
	sops := referencedSOPs(rec)
	if len(sops) == 0 {
		return
	}

	candidates := make(map[model.SeriesUID]struct{})
	for _, sop := range sops {
		if series, ok := sopToSeries[model.SopUID(sop)]; ok {
			candidates[series] = struct{}{}
		}
	}
	if len(candidates) == 0 {
		return
	}

	rec.ReferencedSeriesUID = string(smallestSeries(candidates))
}

// resolveViaDirectSeriesUID handles SR, whose ReferencedSeriesSequence
// already carries a SeriesInstanceUID directly: no SOP->series lookup is
// needed, unlike every other referencing modality.
func resolveViaDirectSeriesUID(rec *model.SeriesRecord) {
	if v, ok := rec.Extra["ReferencedSeriesUID"].(string); ok && v != "" {
		rec.ReferencedSeriesUID = v
	}
}

// referencedSOPs picks, per modality, the field holding the SOPInstanceUID(s)
// that should be mapped back to a series.
//
// RTDOSE is the one modality with three independent reference chains
// (plan, structure set, image); the structure set link is preferred as the
// most clinically load-bearing, falling back to the plan and then the image
// reference (see the Open Question note in DESIGN.md on why the image field
// is named ReferencedSeriesUID despite holding a SOPInstanceUID).
func referencedSOPs(rec *model.SeriesRecord) []string {
	switch rec.Modality {
	case "RTSTRUCT", "SEG":
		if v, ok := rec.Extra["ReferencedSOPUIDs"].([]string); ok {
			return v
		}
	case "RTPLAN":
		if v, ok := rec.Extra["ReferencedStructureSetSOP"].(string); ok && v != "" {
			return []string{v}
		}
	case "RTDOSE":
		if v, ok := rec.Extra["ReferencedStructureSetSOP"].(string); ok && v != "" {
			return []string{v}
		}
		if v, ok := rec.Extra["ReferencedRTPlanSOP"].(string); ok && v != "" {
			return []string{v}
		}
		if v, ok := rec.Extra["ReferencedSeriesUID"].(string); ok && v != "" {
			return []string{v}
		}
	}
	return nil
}

// buildFrameOfReferenceIndex maps FrameOfReferenceUID to the set of CT
// series sharing it, the pre-pass PT resolution needs.
func buildFrameOfReferenceIndex(meta model.SeriesMetaMap) map[string]map[model.SeriesUID]struct{} {
	index := make(map[string]map[model.SeriesUID]struct{})
	meta.All(func(series model.SeriesUID, sub model.SubSeriesID, rec *model.SeriesRecord) {
		if rec.Modality != "CT" || rec.FrameOfReferenceUID == "" {
			return
		}
		set, ok := index[rec.FrameOfReferenceUID]
		if !ok {
			set = make(map[model.SeriesUID]struct{})
			index[rec.FrameOfReferenceUID] = set
		}
		set[series] = struct{}{}
	})
	return index
}

// resolveViaFrameOfReference assigns a PT series to the lexicographically
// first CT series sharing its FrameOfReferenceUID. A PT with no
// FrameOfReferenceUID match, or none at all, is left unreferenced and
// becomes its own forest root.
func resolveViaFrameOfReference(rec *model.SeriesRecord, index map[string]map[model.SeriesUID]struct{}) {
	if rec.FrameOfReferenceUID == "" {
		return
	}
	candidates, ok := index[rec.FrameOfReferenceUID]
	if !ok || len(candidates) == 0 {
		return
	}
	rec.ReferencedSeriesUID = string(smallestSeries(candidates))
}

func smallestSeries(set map[model.SeriesUID]struct{}) model.SeriesUID {
	uids := make([]string, 0, len(set))
	for u := range set {
		uids = append(uids, string(u))
	}
	sort.Strings(uids)
	return model.SeriesUID(uids[0])
}

// referencedModality looks up the modality of rec's referenced series. SR's
// list of referenced series (when present) is joined with "|"; every other
// modality resolves to at most one referenced series.
func referencedModality(rec *model.SeriesRecord, meta model.SeriesMetaMap) string {
	if list, ok := rec.Extra["ReferencedSeriesUIDs"].([]string); ok && len(list) > 0 {
		modalities := make([]string, 0, len(list))
		for _, uid := range list {
			if m := modalityOf(model.SeriesUID(uid), meta); m != "" {
				modalities = append(modalities, m)
			}
		}
		return joinUnique(modalities)
	}

	if rec.ReferencedSeriesUID == "" {
		return ""
	}
	return modalityOf(model.SeriesUID(rec.ReferencedSeriesUID), meta)
}

func modalityOf(series model.SeriesUID, meta model.SeriesMetaMap) string {
	inner, ok := meta[series]
	if !ok {
		return ""
	}
	for _, rec := range inner {
		return rec.Modality
	}
	return ""
}

func joinUnique(values []string) string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	joined := ""
	for i, v := range out {
		if i > 0 {
			joined += "|"
		}
		joined += v
	}
	return joined
}
