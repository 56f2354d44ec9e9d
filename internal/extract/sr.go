package extract

import (
	"sort"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/codeninja55/dcmgraph/internal/registry"
)

func init() {
	registry.MustRegister(&registry.Extractor{
		Modality:       "SR",
		ModalityTags:   []string{"CurrentRequestedProcedureEvidenceSequence"},
		ComputedFields: srFields,
	})
}

// srFields walks CurrentRequestedProcedureEvidenceSequence, whose entries
// each carry their own ReferencedSeriesSequence; an SR can therefore
// reference more than one series, unlike every other modality this engine
// dispatches on. All referenced SeriesInstanceUIDs and SOPInstanceUIDs are
// deduplicated and returned as sorted lists so the join used by the
// resolver's ReferencedModality ("|"-separated) is stable across runs.
func srFields(ds *dicom.Dataset) (map[string]any, error) {
	out := map[string]any{}

	seriesSeen := make(map[string]struct{})
	sopSeen := make(map[string]struct{})

	for _, evidence := range sequenceItems(ds, tag.CurrentRequestedProcedureEvidenceSequence) {
		for _, seriesItem := range itemSequence(evidence, tag.ReferencedSeriesSequence) {
			if uid := stringInItem(seriesItem, tag.SeriesInstanceUID); uid != "" {
				seriesSeen[uid] = struct{}{}
			}
			for _, sop := range itemSequence(seriesItem, tag.ReferencedSOPSequence) {
				if uid := stringInItem(sop, tag.ReferencedSOPInstanceUID); uid != "" {
					sopSeen[uid] = struct{}{}
				}
			}
		}
	}

	if len(seriesSeen) > 0 {
		list := setToSortedSlice(seriesSeen)
		out["ReferencedSeriesUIDs"] = list
		out["ReferencedSeriesUID"] = list[0]
	}
	if len(sopSeen) > 0 {
		out["ReferencedSOPUIDs"] = setToSortedSlice(sopSeen)
	}

	return out, nil
}

func setToSortedSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
