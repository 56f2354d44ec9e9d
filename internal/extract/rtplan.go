package extract

import (
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/codeninja55/dcmgraph/internal/registry"
)

func init() {
	registry.MustRegister(&registry.Extractor{
		Modality:       "RTPLAN",
		ModalityTags:   []string{"ReferencedStructureSetSequence"},
		ComputedFields: rtplanFields,
	})
}

// rtplanFields resolves the single RTSTRUCT an RTPLAN references. A plan
// referencing more than one structure set keeps only the first; the others
// are dropped without an error, matching the upstream "only the first one
// will be used" behavior for this one-to-one relationship.
func rtplanFields(ds *dicom.Dataset) (map[string]any, error) {
	out := map[string]any{}

	items := sequenceItems(ds, tag.ReferencedStructureSetSequence)
	if len(items) == 0 {
		return out, nil
	}
	if uid := stringInItem(items[0], tag.ReferencedSOPInstanceUID); uid != "" {
		out["ReferencedStructureSetSOP"] = uid
	}
	return out, nil
}
