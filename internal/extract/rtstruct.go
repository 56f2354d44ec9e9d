package extract

import (
	"errors"
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/codeninja55/dcmgraph/internal/registry"
)

// ErrNotRTStruct is returned by RTStruct when called on a dataset whose
// Modality is not RTSTRUCT.
var ErrNotRTStruct = errors.New("extract: not an RTSTRUCT dataset")

// RTStruct is the direct entry point for a caller that specifically wants
// RTSTRUCT fields, as opposed to modality-dispatched extraction via File.
func RTStruct(ds *dicom.Dataset) (map[string]any, error) {
	if m := stringTag(ds, tag.Modality); m != "RTSTRUCT" {
		return nil, fmt.Errorf("%w: got %q", ErrNotRTStruct, m)
	}
	return rtstructFields(ds)
}

func init() {
	registry.MustRegister(&registry.Extractor{
		Modality: "RTSTRUCT",
		ModalityTags: []string{
			"StructureSetROISequence",
			"ReferencedFrameOfReferenceSequence",
		},
		ComputedFields: rtstructFields,
	})
}

// rtstructFields walks
// ReferencedFrameOfReferenceSequence[0].RTReferencedStudySequence[0].
// RTReferencedSeriesSequence[0] to recover the referenced SeriesInstanceUID
// and the SOPInstanceUIDs of every referenced image in its
// ContourImageSequence. Any missing link in that chain yields an empty
// series UID and nil SOP list rather than an error: not every RTSTRUCT
// carries geometry references.
func rtstructFields(ds *dicom.Dataset) (map[string]any, error) {
	out := map[string]any{}

	out["ROINames"] = roiNames(ds)

	forRefs := sequenceItems(ds, tag.ReferencedFrameOfReferenceSequence)
	if len(forRefs) == 0 {
		return out, nil
	}
	studyRefs := itemSequence(forRefs[0], tag.RTReferencedStudySequence)
	if len(studyRefs) == 0 {
		return out, nil
	}
	seriesRefs := itemSequence(studyRefs[0], tag.RTReferencedSeriesSequence)
	if len(seriesRefs) == 0 {
		return out, nil
	}

	seriesItem := seriesRefs[0]
	seriesUID := stringInItem(seriesItem, tag.SeriesInstanceUID)
	if seriesUID != "" {
		out["ReferencedSeriesUID"] = seriesUID
	}

	contourImages := itemSequence(seriesItem, tag.ContourImageSequence)
	sopUIDs := make([]string, 0, len(contourImages))
	for _, ci := range contourImages {
		if uid := stringInItem(ci, tag.ReferencedSOPInstanceUID); uid != "" {
			sopUIDs = append(sopUIDs, uid)
		}
	}
	if len(sopUIDs) > 0 {
		out["ReferencedSOPUIDs"] = sopUIDs
	}

	return out, nil
}

// roiNames extracts ROIName from every item of StructureSetROISequence.
func roiNames(ds *dicom.Dataset) []string {
	items := sequenceItems(ds, tag.StructureSetROISequence)
	names := make([]string, 0, len(items))
	for _, item := range items {
		if name := stringInItem(item, tag.ROIName); name != "" {
			names = append(names, name)
		}
	}
	return names
}
