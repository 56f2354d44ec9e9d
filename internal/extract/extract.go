// Package extract implements the per-file metadata extraction stage (C2):
// tolerant Part10 parsing plus base and modality-specific tag extraction.
//
// Parsing itself is delegated to github.com/suyashkumar/dicom, which
// understands nested Sequence (SQ) elements; the reference-carrying
// modality extractors below (RTSTRUCT, RTDOSE, RTPLAN, SEG, SR) all need to
// walk such sequences, which is the one piece this engine's own from-scratch
// byte parser never implemented.
package extract

import (
	"errors"
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/codeninja55/dcmgraph/dicom/datetime"
	"github.com/codeninja55/dcmgraph/dicom/uid"
	"github.com/codeninja55/dcmgraph/internal/model"
	"github.com/codeninja55/dcmgraph/internal/registry"
)

// ErrInvalidDicomInput is returned when a file cannot be parsed as DICOM at
// all (missing preamble, unreadable transfer syntax, truncated stream).
var ErrInvalidDicomInput = errors.New("extract: invalid DICOM input")

// ErrMissingAttribute is returned when a required base attribute
// (SeriesInstanceUID or SOPInstanceUID) is absent.
var ErrMissingAttribute = errors.New("extract: missing required attribute")

// baseTags mirrors the fixed attribute set every modality extractor starts
// from, regardless of its specific computed fields.
var baseTags = []string{
	"PatientID",
	"StudyInstanceUID",
	"SeriesInstanceUID",
	"SOPInstanceUID",
	"SOPClassUID",
	"Modality",
	"FrameOfReferenceUID",
	"AcquisitionNumber",
	"InstanceNumber",
	"StudyDate",
	"StudyTime",
	"SeriesDescription",
	"SeriesNumber",
}

// File parses path and extracts base plus modality-specific fields into a
// SeriesRecord. The returned record's ReferencedSeriesUID/ReferencedModality
// are left empty; those are populated later by the resolver, once the
// entire directory has been crawled.
func File(path string) (*model.SeriesRecord, model.SopUID, error) {
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrInvalidDicomInput, path, err)
	}

	rec := model.NewSeriesRecord()
	rec.PatientID = stringTag(&ds, tag.PatientID)
	rec.StudyInstanceUID = stringTag(&ds, tag.StudyInstanceUID)
	rec.Modality = stringTag(&ds, tag.Modality)
	rec.FrameOfReferenceUID = stringTag(&ds, tag.FrameOfReferenceUID)
	rec.AcquisitionNumber = normalizeSubSeries(stringTag(&ds, tag.AcquisitionNumber))

	seriesUID := stringTag(&ds, tag.SeriesInstanceUID)
	sopUID := stringTag(&ds, tag.SOPInstanceUID)
	if seriesUID == "" || sopUID == "" {
		return nil, "", fmt.Errorf("%w: %s: SeriesInstanceUID/SOPInstanceUID", ErrMissingAttribute, path)
	}
	rec.SeriesInstanceUID = model.SeriesUID(seriesUID)
	rec.SubSeries = model.SubSeriesID(rec.AcquisitionNumber)

	for _, keyword := range baseTags {
		if t, err := tag.FindByName(keyword); err == nil {
			if v := stringTag(&ds, t.Tag); v != "" {
				rec.Extra[keyword] = v
			}
		}
	}

	if sopClassUID := stringTag(&ds, tag.SOPClassUID); sopClassUID != "" {
		if name := uid.Name(sopClassUID); name != "" {
			rec.Extra["SOPClassName"] = name
		}
	}
	if studyDate := stringTag(&ds, tag.StudyDate); studyDate != "" {
		if parsed, err := datetime.ParseDate(studyDate); err == nil {
			rec.Extra["StudyDateParsed"] = parsed.Time.Format("2006-01-02")
		}
	}

	if ex, err := registry.Lookup(rec.Modality); err == nil {
		fields, err := ex.ComputedFields(&ds)
		if err != nil {
			// A modality-specific field failing to extract is tolerated:
			// the file is still indexed with whatever base tags it has.
			rec.Extra["computedFieldsError"] = err.Error()
		}
		for k, v := range fields {
			rec.Extra[k] = v
		}
	}

	return rec, model.SopUID(sopUID), nil
}

// normalizeSubSeries mirrors the upstream crawl convention: an absent or
// literal "None" AcquisitionNumber both collapse to the default sub-series.
func normalizeSubSeries(acquisitionNumber string) string {
	if acquisitionNumber == "" || acquisitionNumber == "None" {
		return string(model.DefaultSubSeries)
	}
	return acquisitionNumber
}

// stringTag returns the first string value of t in ds, or "" if the tag is
// absent, empty, or not string-valued. Tolerant by design: spec.md's
// Non-goals rule out repairing malformed DICOMs, so a tag that doesn't
// resolve cleanly is just omitted rather than treated as a parse failure.
func stringTag(ds *dicom.Dataset, t tag.Tag) string {
	elem, err := ds.FindElementByTag(t)
	if err != nil {
		return ""
	}
	strs, ok := elem.Value.GetValue().([]string)
	if !ok || len(strs) == 0 {
		return ""
	}
	return strs[0]
}

// sequenceItems returns the nested element lists of a Sequence-VR element,
// or nil if t is absent or not a sequence.
func sequenceItems(ds *dicom.Dataset, t tag.Tag) []*dicom.SequenceItemValue {
	elem, err := ds.FindElementByTag(t)
	if err != nil {
		return nil
	}
	items, ok := elem.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		return nil
	}
	return items
}

// findInItem looks up t among a single sequence item's nested elements.
func findInItem(item *dicom.SequenceItemValue, t tag.Tag) (*dicom.Element, bool) {
	for _, e := range item.GetValue() {
		if e.Tag == t {
			return e, true
		}
	}
	return nil, false
}

// stringInItem returns the first string value of t within item, or "".
func stringInItem(item *dicom.SequenceItemValue, t tag.Tag) string {
	elem, ok := findInItem(item, t)
	if !ok {
		return ""
	}
	strs, ok := elem.Value.GetValue().([]string)
	if !ok || len(strs) == 0 {
		return ""
	}
	return strs[0]
}

// itemSequence returns the nested items of a sequence-valued tag found
// inside another sequence item (one level of further nesting).
func itemSequence(item *dicom.SequenceItemValue, t tag.Tag) []*dicom.SequenceItemValue {
	elem, ok := findInItem(item, t)
	if !ok {
		return nil
	}
	items, ok := elem.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		return nil
	}
	return items
}
