// Package datetime provides parsing for the DICOM Date (DA) Value
// Representation.
//
// DICOM dates follow the YYYYMMDD format but support variable precision
// (year only, year-month, or full date), plus the legacy NEMA-300
// YYYY.MM.DD format. Precision is tracked so that parse -> format round
// trips preserve the original level of detail.
//
// # Basic Usage
//
//	date, err := datetime.ParseDate("20231015")  // Full date
//	date, err := datetime.ParseDate("202310")    // Year-month
//	date, err := datetime.ParseDate("2023")      // Year only
//
// # Precision Tracking
//
//	date, _ := datetime.ParseDate("202310")   // Year-month precision
//	fmt.Println(date.Precision)                // Month
//	fmt.Println(date.DCM())                    // "202310" (not "20231001")
//
// # DICOM Standard Reference
//
// See: https://dicom.nema.org/medical/dicom/current/output/html/part05.html
package datetime
