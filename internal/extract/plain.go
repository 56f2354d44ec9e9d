package extract

import (
	"github.com/suyashkumar/dicom"

	"github.com/codeninja55/dcmgraph/internal/registry"
)

// noComputedFields is shared by modalities that carry no reference sequence
// of their own: CT and MR are always roots, and PT's reference (when it has
// one) is resolved separately via FrameOfReferenceUID matching rather than
// an in-file sequence.
func noComputedFields(*dicom.Dataset) (map[string]any, error) {
	return map[string]any{}, nil
}

func init() {
	for _, modality := range []string{"CT", "MR", "PT"} {
		registry.MustRegister(&registry.Extractor{
			Modality:       modality,
			ComputedFields: noComputedFields,
		})
	}
}
