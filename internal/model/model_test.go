package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesMetaMap_PutGet(t *testing.T) {
	meta := make(SeriesMetaMap)
	rec := NewSeriesRecord()
	rec.Modality = "CT"

	meta.Put("series-1", DefaultSubSeries, rec)

	got, ok := meta.Get("series-1", DefaultSubSeries)
	require.True(t, ok)
	assert.Equal(t, "CT", got.Modality)

	_, ok = meta.Get("series-1", "2")
	assert.False(t, ok)
}

func TestSeriesMetaMap_All(t *testing.T) {
	meta := make(SeriesMetaMap)
	meta.Put("a", DefaultSubSeries, NewSeriesRecord())
	meta.Put("a", "2", NewSeriesRecord())
	meta.Put("b", DefaultSubSeries, NewSeriesRecord())

	count := 0
	meta.All(func(series SeriesUID, sub SubSeriesID, rec *SeriesRecord) {
		count++
	})
	assert.Equal(t, 3, count)
}

func TestNewSeriesRecord_InitializesMaps(t *testing.T) {
	rec := NewSeriesRecord()
	require.NotNil(t, rec.Instances)
	require.NotNil(t, rec.Extra)

	rec.Instances["sop-1"] = "file.dcm"
	assert.Len(t, rec.Instances, 1)
}

func TestSeriesNode_AddChildDedups(t *testing.T) {
	parent := &SeriesNode{ID: 0, Series: "parent"}
	child := &SeriesNode{ID: 1, Series: "child"}

	parent.AddChild(child)
	parent.AddChild(child)

	assert.Len(t, parent.Children, 1)
}

func TestSeriesNode_CopyHasEmptyChildren(t *testing.T) {
	parent := &SeriesNode{ID: 0, Series: "parent", Modality: "CT"}
	parent.AddChild(&SeriesNode{ID: 1, Series: "child"})

	clone := parent.Copy()
	assert.Equal(t, parent.Series, clone.Series)
	assert.Equal(t, parent.Modality, clone.Modality)
	assert.Empty(t, clone.Children)
}
