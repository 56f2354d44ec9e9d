package registry

import (
	"errors"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noFields(*dicom.Dataset) (map[string]any, error) {
	return map[string]any{}, nil
}

func TestRegisterAndLookup(t *testing.T) {
	mu.Lock()
	registry = make(map[string]*Extractor)
	mu.Unlock()

	ex := &Extractor{Modality: "CT", ComputedFields: noFields}
	require.NoError(t, Register(ex))

	got, err := Lookup("CT")
	require.NoError(t, err)
	assert.Same(t, ex, got)
}

func TestRegister_DuplicateRejected(t *testing.T) {
	mu.Lock()
	registry = make(map[string]*Extractor)
	mu.Unlock()

	require.NoError(t, Register(&Extractor{Modality: "MR", ComputedFields: noFields}))
	err := Register(&Extractor{Modality: "MR", ComputedFields: noFields})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateRegistration))
}

func TestLookup_Unsupported(t *testing.T) {
	mu.Lock()
	registry = make(map[string]*Extractor)
	mu.Unlock()

	_, err := Lookup("PT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedModality))
}

func TestSupportedModalities_SortedAndUnique(t *testing.T) {
	mu.Lock()
	registry = make(map[string]*Extractor)
	mu.Unlock()

	require.NoError(t, Register(&Extractor{Modality: "RTSTRUCT", ComputedFields: noFields}))
	require.NoError(t, Register(&Extractor{Modality: "CT", ComputedFields: noFields}))

	assert.Equal(t, []string{"CT", "RTSTRUCT"}, SupportedModalities())
}

func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	mu.Lock()
	registry = make(map[string]*Extractor)
	mu.Unlock()

	MustRegister(&Extractor{Modality: "SEG", ComputedFields: noFields})
	assert.Panics(t, func() {
		MustRegister(&Extractor{Modality: "SEG", ComputedFields: noFields})
	})
}
