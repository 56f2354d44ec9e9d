package crawl

import (
	"testing"

	"github.com/codeninja55/dcmgraph/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRec(seriesUID, modality string) *model.SeriesRecord {
	rec := model.NewSeriesRecord()
	rec.SeriesInstanceUID = model.SeriesUID(seriesUID)
	rec.SubSeries = model.DefaultSubSeries
	rec.Modality = modality
	return rec
}

func TestReduce_ComputesFolderAndInstanceBasenameRelativeToParentOfRoot(t *testing.T) {
	results := make(chan fileResult, 1)
	results <- fileResult{
		path: "/data/PatientA/series1/img001.dcm",
		rec:  newRec("ct-1", "CT"),
		sop:  "sop-1",
	}
	close(results)

	out := reduce(results, "/data")

	rec, ok := out.Meta.Get("ct-1", model.DefaultSubSeries)
	require.True(t, ok)
	assert.Equal(t, "PatientA/series1", rec.Folder)
	assert.Equal(t, "img001.dcm", rec.Instances["sop-1"])
}

func TestReduce_FolderSetOnlyOnFirstInstanceOfASeries(t *testing.T) {
	results := make(chan fileResult, 2)
	results <- fileResult{
		path: "/data/PatientA/series1/img001.dcm",
		rec:  newRec("ct-1", "CT"),
		sop:  "sop-1",
	}
	results <- fileResult{
		path: "/data/PatientA/series1-renamed/img002.dcm",
		rec:  newRec("ct-1", "CT"),
		sop:  "sop-2",
	}
	close(results)

	out := reduce(results, "/data")

	rec, ok := out.Meta.Get("ct-1", model.DefaultSubSeries)
	require.True(t, ok)
	assert.Equal(t, "PatientA/series1", rec.Folder)
	assert.Equal(t, "img001.dcm", rec.Instances["sop-1"])
	assert.Equal(t, "img002.dcm", rec.Instances["sop-2"])
	assert.Len(t, rec.Instances, 2)
}

func TestReduce_PopulatesSopSeriesMapAndSkipsFailures(t *testing.T) {
	results := make(chan fileResult, 2)
	results <- fileResult{
		path: "/data/PatientA/series1/img001.dcm",
		rec:  newRec("ct-1", "CT"),
		sop:  "sop-1",
	}
	results <- fileResult{
		path: "/data/PatientA/series1/bad.dcm",
		err:  assert.AnError,
	}
	close(results)

	out := reduce(results, "/data")

	assert.Equal(t, model.SeriesUID("ct-1"), out.SopSeries["sop-1"])
	require.Contains(t, out.Failed, "/data/PatientA/series1/bad.dcm")
}
