package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codeninja55/dcmgraph/internal/model"
)

func newRec(modality string) *model.SeriesRecord {
	rec := model.NewSeriesRecord()
	rec.Modality = modality
	return rec
}

func TestRun_RTSTRUCTResolvesViaReferencedSOP(t *testing.T) {
	meta := make(model.SeriesMetaMap)

	ct := newRec("CT")
	ct.SeriesInstanceUID = "ct-1"
	meta.Put("ct-1", model.DefaultSubSeries, ct)

	rtstruct := newRec("RTSTRUCT")
	rtstruct.SeriesInstanceUID = "rtstruct-1"
	rtstruct.Extra["ReferencedSOPUIDs"] = []string{"sop-ct-1"}
	meta.Put("rtstruct-1", model.DefaultSubSeries, rtstruct)

	sopToSeries := model.SopSeriesMap{"sop-ct-1": "ct-1"}

	Run(meta, sopToSeries)

	assert.Equal(t, "ct-1", rtstruct.ReferencedSeriesUID)
	assert.Equal(t, "CT", rtstruct.ReferencedModality)
}

func TestRun_RTDOSEPrefersStructureSetOverPlanOverImage(t *testing.T) {
	meta := make(model.SeriesMetaMap)

	rtstruct := newRec("RTSTRUCT")
	rtstruct.SeriesInstanceUID = "rtstruct-1"
	meta.Put("rtstruct-1", model.DefaultSubSeries, rtstruct)

	rtplan := newRec("RTPLAN")
	rtplan.SeriesInstanceUID = "rtplan-1"
	meta.Put("rtplan-1", model.DefaultSubSeries, rtplan)

	dose := newRec("RTDOSE")
	dose.SeriesInstanceUID = "dose-1"
	dose.Extra["ReferencedStructureSetSOP"] = "sop-struct"
	dose.Extra["ReferencedRTPlanSOP"] = "sop-plan"
	dose.Extra["ReferencedSeriesUID"] = "sop-image"
	meta.Put("dose-1", model.DefaultSubSeries, dose)

	sopToSeries := model.SopSeriesMap{
		"sop-struct": "rtstruct-1",
		"sop-plan":   "rtplan-1",
		"sop-image":  "ct-1",
	}

	Run(meta, sopToSeries)

	assert.Equal(t, "rtstruct-1", dose.ReferencedSeriesUID)
}

func TestRun_PTResolvesViaFrameOfReference(t *testing.T) {
	meta := make(model.SeriesMetaMap)

	ct := newRec("CT")
	ct.SeriesInstanceUID = "ct-1"
	ct.FrameOfReferenceUID = "for-1"
	meta.Put("ct-1", model.DefaultSubSeries, ct)

	pt := newRec("PT")
	pt.SeriesInstanceUID = "pt-1"
	pt.FrameOfReferenceUID = "for-1"
	meta.Put("pt-1", model.DefaultSubSeries, pt)

	Run(meta, model.SopSeriesMap{})

	assert.Equal(t, "ct-1", pt.ReferencedSeriesUID)
	assert.Equal(t, "CT", pt.ReferencedModality)
}

func TestRun_PTWithNoFrameOfReferenceBecomesUnreferenced(t *testing.T) {
	meta := make(model.SeriesMetaMap)

	pt := newRec("PT")
	pt.SeriesInstanceUID = "pt-1"
	meta.Put("pt-1", model.DefaultSubSeries, pt)

	Run(meta, model.SopSeriesMap{})

	assert.Empty(t, pt.ReferencedSeriesUID)
}

func TestRun_TieBreakPicksLexicographicallySmallest(t *testing.T) {
	meta := make(model.SeriesMetaMap)

	ctB := newRec("CT")
	ctB.SeriesInstanceUID = "ct-b"
	ctB.FrameOfReferenceUID = "for-1"
	meta.Put("ct-b", model.DefaultSubSeries, ctB)

	ctA := newRec("CT")
	ctA.SeriesInstanceUID = "ct-a"
	ctA.FrameOfReferenceUID = "for-1"
	meta.Put("ct-a", model.DefaultSubSeries, ctA)

	pt := newRec("PT")
	pt.SeriesInstanceUID = "pt-1"
	pt.FrameOfReferenceUID = "for-1"
	meta.Put("pt-1", model.DefaultSubSeries, pt)

	Run(meta, model.SopSeriesMap{})

	assert.Equal(t, "ct-a", pt.ReferencedSeriesUID)
}

func TestRun_SRJoinsMultipleReferencedModalities(t *testing.T) {
	meta := make(model.SeriesMetaMap)

	ct := newRec("CT")
	ct.SeriesInstanceUID = "ct-1"
	meta.Put("ct-1", model.DefaultSubSeries, ct)

	mr := newRec("MR")
	mr.SeriesInstanceUID = "mr-1"
	meta.Put("mr-1", model.DefaultSubSeries, mr)

	sr := newRec("SR")
	sr.SeriesInstanceUID = "sr-1"
	sr.Extra["ReferencedSeriesUID"] = "ct-1"
	sr.Extra["ReferencedSeriesUIDs"] = []string{"ct-1", "mr-1"}
	meta.Put("sr-1", model.DefaultSubSeries, sr)

	Run(meta, model.SopSeriesMap{})

	assert.Equal(t, "ct-1", sr.ReferencedSeriesUID)
	assert.Equal(t, "CT|MR", sr.ReferencedModality)
}
