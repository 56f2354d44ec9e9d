// Package uid provides human-readable names for the DICOM SOP Class UIDs
// produced by the modalities this engine indexes.
//
// DICOM Standard Reference:
// https://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_A
package uid

// sopClassNames maps well-known SOP Class UIDs to their DICOM PS3.6 names.
// Limited to the storage classes this engine's extractors actually produce
// records for (CT, MR, PT, RTSTRUCT, RTDOSE, RTPLAN, SEG, SR), plus
// Secondary Capture, which commonly appears alongside them in a study.
var sopClassNames = map[string]string{
	"1.2.840.10008.5.1.4.1.1.2":     "CT Image Storage",
	"1.2.840.10008.5.1.4.1.1.4":     "MR Image Storage",
	"1.2.840.10008.5.1.4.1.1.128":   "Positron Emission Tomography Image Storage",
	"1.2.840.10008.5.1.4.1.1.481.2": "RT Dose Storage",
	"1.2.840.10008.5.1.4.1.1.481.3": "RT Structure Set Storage",
	"1.2.840.10008.5.1.4.1.1.481.5": "RT Plan Storage",
	"1.2.840.10008.5.1.4.1.1.66.4":  "Segmentation Storage",
	"1.2.840.10008.5.1.4.1.1.88.11": "Basic Text SR Storage",
	"1.2.840.10008.5.1.4.1.1.88.22": "Enhanced SR Storage",
	"1.2.840.10008.5.1.4.1.1.88.33": "Comprehensive SR Storage",
	"1.2.840.10008.5.1.4.1.1.7":     "Secondary Capture Image Storage",
}

// Name returns the human-readable SOP Class name for uid, or "" if it is
// not one of the storage classes this engine recognizes.
func Name(uid string) string {
	return sopClassNames[uid]
}
