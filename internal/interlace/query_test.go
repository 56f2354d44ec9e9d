package interlace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dcmgraph/internal/model"
)

func buildQueryForest(t *testing.T) *Forest {
	t.Helper()
	meta := make(model.SeriesMetaMap)
	meta.Put("ct-1", model.DefaultSubSeries, rec("CT", ""))
	meta.Put("rtstruct-1", model.DefaultSubSeries, rec("RTSTRUCT", "ct-1"))
	meta.Put("rtdose-1", model.DefaultSubSeries, rec("RTDOSE", "rtstruct-1"))
	return Build(meta, GroupByReference)
}

func TestQuery_MatchesContiguousSubsequence(t *testing.T) {
	f := buildQueryForest(t)

	results, err := f.Query([]string{"CT", "RTSTRUCT"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.SeriesUID("ct-1"), results[0].Root)
	require.Len(t, results[0].Nodes, 2)
	assert.Equal(t, "CT", results[0].Nodes[0].Modality)
	assert.Equal(t, "RTSTRUCT", results[0].Nodes[1].Modality)
}

func TestQuery_ReordersQueryIntoCanonicalOrder(t *testing.T) {
	f := buildQueryForest(t)

	results, err := f.Query([]string{"RTDOSE", "CT", "RTSTRUCT"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Nodes, 3)
}

func TestQuery_RTDOSERequiresRTSTRUCT(t *testing.T) {
	f := buildQueryForest(t)

	_, err := f.Query([]string{"RTDOSE"})
	assert.Error(t, err)
}

func TestQuery_EmptyQueryErrors(t *testing.T) {
	f := buildQueryForest(t)

	_, err := f.Query(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestQuery_NoMatchErrors(t *testing.T) {
	f := buildQueryForest(t)

	_, err := f.Query([]string{"MR"})
	assert.ErrorIs(t, err, ErrEmptyInput)
}
