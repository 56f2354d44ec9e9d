package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestSeg_RejectsNonSegModality(t *testing.T) {
	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustElem(t, tag.Modality, []string{"MR"}),
	}}

	_, err := Seg(ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotSeg)
}

func TestSeg_ModernShapeExtractsReferencedSeriesAndSOPs(t *testing.T) {
	instanceItem := []*dicom.Element{
		mustElem(t, tag.ReferencedSOPInstanceUID, []string{"sop-1"}),
	}
	seriesItem := []*dicom.Element{
		mustElem(t, tag.SeriesInstanceUID, []string{"ct-series-1"}),
		mustElem(t, tag.ReferencedInstanceSequence, [][]*dicom.Element{instanceItem}),
	}

	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustElem(t, tag.Modality, []string{"SEG"}),
		mustElem(t, tag.ReferencedSeriesSequence, [][]*dicom.Element{seriesItem}),
	}}

	fields, err := Seg(ds)
	require.NoError(t, err)
	assert.Equal(t, "ct-series-1", fields["ReferencedSeriesUID"])
	assert.Equal(t, []string{"sop-1"}, fields["ReferencedSOPUIDs"])
}

func TestSeg_LegacyShapeFallsBackToSourceImageSequence(t *testing.T) {
	sourceItem := []*dicom.Element{
		mustElem(t, tag.ReferencedSOPInstanceUID, []string{"sop-legacy-1"}),
	}

	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustElem(t, tag.Modality, []string{"SEG"}),
		mustElem(t, tag.SourceImageSequence, [][]*dicom.Element{sourceItem}),
	}}

	fields, err := Seg(ds)
	require.NoError(t, err)
	_, hasSeries := fields["ReferencedSeriesUID"]
	assert.False(t, hasSeries)
	assert.Equal(t, []string{"sop-legacy-1"}, fields["ReferencedSOPUIDs"])
}

func TestSeg_MultipleReferencedSeriesItemsIsError(t *testing.T) {
	seriesItemA := []*dicom.Element{mustElem(t, tag.SeriesInstanceUID, []string{"a"})}
	seriesItemB := []*dicom.Element{mustElem(t, tag.SeriesInstanceUID, []string{"b"})}

	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustElem(t, tag.Modality, []string{"SEG"}),
		mustElem(t, tag.ReferencedSeriesSequence, [][]*dicom.Element{seriesItemA, seriesItemB}),
	}}

	_, err := Seg(ds)
	require.Error(t, err)
}
