// Package registry holds the modality -> extractor dispatch table used in
// place of per-modality dynamic dispatch (spec.md "dynamic-dispatch
// replacement"): a compile-time map populated once at init, looked up by a
// plain string key instead of a type switch that grows with every modality.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/suyashkumar/dicom"
)

// ErrDuplicateRegistration is returned by Register when a modality has
// already been claimed by another extractor. Two extractors registering the
// same modality is a programming error, not a data error, so it is fatal at
// init time rather than recovered from.
var ErrDuplicateRegistration = errors.New("registry: modality already registered")

// ErrUnsupportedModality is returned by Lookup when no extractor is
// registered for a modality.
var ErrUnsupportedModality = errors.New("registry: unsupported modality")

// ComputedFields extracts the modality-specific reference and enrichment
// fields from a parsed dataset. Implementations correspond 1:1 with the
// modality_utils functions of the system this engine indexes: rtstruct,
// rtdose, rtplan, seg, and sr each resolve their own reference shape.
type ComputedFields func(ds *dicom.Dataset) (map[string]any, error)

// Extractor bundles a modality's specific tag set with its computed-field
// function.
type Extractor struct {
	Modality       string
	ModalityTags   []string
	ComputedFields ComputedFields
}

var (
	mu       sync.RWMutex
	registry = make(map[string]*Extractor)
)

// Register adds ex to the registry under ex.Modality. It is intended to be
// called from package-level init() functions of the extractor
// implementations; a duplicate registration indicates two extractors
// claiming the same modality and returns ErrDuplicateRegistration.
func Register(ex *Extractor) error {
	mu.Lock()
	defer mu.Unlock()

	if ex == nil || ex.Modality == "" {
		return fmt.Errorf("registry: cannot register extractor with empty modality")
	}
	if _, exists := registry[ex.Modality]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRegistration, ex.Modality)
	}
	registry[ex.Modality] = ex
	return nil
}

// MustRegister panics on error; for use in init() where a duplicate
// registration is a build-time defect that must never reach production.
func MustRegister(ex *Extractor) {
	if err := Register(ex); err != nil {
		panic(err)
	}
}

// Lookup returns the extractor registered for modality, if any.
func Lookup(modality string) (*Extractor, error) {
	mu.RLock()
	defer mu.RUnlock()

	ex, ok := registry[modality]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModality, modality)
	}
	return ex, nil
}

// SupportedModalities returns the sorted list of modalities with a
// registered extractor.
func SupportedModalities() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(registry))
	for m := range registry {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
