package extract

import (
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/codeninja55/dcmgraph/internal/registry"
)

func init() {
	registry.MustRegister(&registry.Extractor{
		Modality: "RTDOSE",
		ModalityTags: []string{
			"ReferencedRTPlanSequence",
			"ReferencedStructureSetSequence",
			"ReferencedImageSequence",
		},
		ComputedFields: rtdoseFields,
	})
}

// rtdoseFields extracts RTDOSE's three independent reference chains.
//
// ReferencedImageSequence[0].ReferencedSOPInstanceUID is stored under
// ReferencedSeriesUID even though it is a SOPInstanceUID, not a
// SeriesInstanceUID: that is how this field has always been populated
// upstream (some RTDOSE files place a SeriesInstanceUID there instead), so
// the field is carried through unchanged rather than "corrected". The
// resolver looks the value up only in the SOP->Series map: it resolves when
// it is the SOPInstanceUID of a crawled instance, and a SeriesInstanceUID
// stored there is not resolved.
func rtdoseFields(ds *dicom.Dataset) (map[string]any, error) {
	out := map[string]any{}

	if planItems := sequenceItems(ds, tag.ReferencedRTPlanSequence); len(planItems) > 0 {
		if uid := stringInItem(planItems[0], tag.ReferencedSOPInstanceUID); uid != "" {
			out["ReferencedRTPlanSOP"] = uid
		}
	}
	if structItems := sequenceItems(ds, tag.ReferencedStructureSetSequence); len(structItems) > 0 {
		if uid := stringInItem(structItems[0], tag.ReferencedSOPInstanceUID); uid != "" {
			out["ReferencedStructureSetSOP"] = uid
		}
	}
	if imageItems := sequenceItems(ds, tag.ReferencedImageSequence); len(imageItems) > 0 {
		if uid := stringInItem(imageItems[0], tag.ReferencedSOPInstanceUID); uid != "" {
			out["ReferencedSeriesUID"] = uid
		}
	}

	return out, nil
}
