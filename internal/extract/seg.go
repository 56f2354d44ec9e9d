package extract

import (
	"errors"
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/codeninja55/dcmgraph/internal/registry"
)

// ErrNotSeg is returned by Seg when called on a dataset whose Modality is
// not SEG.
var ErrNotSeg = errors.New("extract: not a SEG dataset")

// Seg is the direct entry point for a caller that specifically wants SEG
// fields, as opposed to modality-dispatched extraction via File.
func Seg(ds *dicom.Dataset) (map[string]any, error) {
	if m := stringTag(ds, tag.Modality); m != "SEG" {
		return nil, fmt.Errorf("%w: got %q", ErrNotSeg, m)
	}
	return segFields(ds)
}

func init() {
	registry.MustRegister(&registry.Extractor{
		Modality: "SEG",
		ModalityTags: []string{
			"ReferencedSeriesSequence",
			"SourceImageSequence",
		},
		ComputedFields: segFields,
	})
}

// segFields implements the two SEG reference shapes: modern segmentation
// objects carry a ReferencedSeriesSequence (with a ReferencedInstanceSequence
// of SOPInstanceUIDs inside its first item); older ones fall back to a flat
// SourceImageSequence of SOPInstanceUIDs only. Exactly one
// ReferencedSeriesUID is expected when ReferencedSeriesSequence is present;
// more than one is reported as an error, since that shape is not one this
// engine's resolver can dispatch deterministically.
func segFields(ds *dicom.Dataset) (map[string]any, error) {
	out := map[string]any{}

	if seriesItems := sequenceItems(ds, tag.ReferencedSeriesSequence); len(seriesItems) > 0 {
		if len(seriesItems) > 1 {
			return out, fmt.Errorf("extract: SEG has %d ReferencedSeriesSequence items, expected 1", len(seriesItems))
		}
		item := seriesItems[0]
		if uid := stringInItem(item, tag.SeriesInstanceUID); uid != "" {
			out["ReferencedSeriesUID"] = uid
		}
		instances := itemSequence(item, tag.ReferencedInstanceSequence)
		sopUIDs := make([]string, 0, len(instances))
		for _, inst := range instances {
			if uid := stringInItem(inst, tag.ReferencedSOPInstanceUID); uid != "" {
				sopUIDs = append(sopUIDs, uid)
			}
		}
		if len(sopUIDs) > 0 {
			out["ReferencedSOPUIDs"] = sopUIDs
		}
		return out, nil
	}

	if sourceItems := sequenceItems(ds, tag.SourceImageSequence); len(sourceItems) > 0 {
		sopUIDs := make([]string, 0, len(sourceItems))
		for _, item := range sourceItems {
			if uid := stringInItem(item, tag.ReferencedSOPInstanceUID); uid != "" {
				sopUIDs = append(sopUIDs, uid)
			}
		}
		if len(sopUIDs) > 0 {
			out["ReferencedSOPUIDs"] = sopUIDs
		}
	}

	return out, nil
}
