// Package serialize writes the crawl/resolve pipeline's output to disk: the
// full per-series JSON index, a slim deduplicated CSV suitable for quick
// inspection, and a queryable SQLite catalogue for ad hoc lookups.
package serialize

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codeninja55/dcmgraph/internal/model"
)

// seriesJSON is the wire shape of one (SeriesUID, SubSeriesID) entry in the
// full crawl database, keeping the JSON stable even if SeriesRecord gains
// internal-only fields later.
type seriesJSON struct {
	PatientID           string            `json:"PatientID"`
	StudyInstanceUID    string            `json:"StudyInstanceUID"`
	SeriesInstanceUID   string            `json:"SeriesInstanceUID"`
	SubSeries           string            `json:"SubSeries"`
	Modality            string            `json:"Modality"`
	FrameOfReferenceUID string            `json:"FrameOfReferenceUID"`
	ReferencedSeriesUID string            `json:"ReferencedSeriesUID,omitempty"`
	ReferencedModality  string            `json:"ReferencedModality,omitempty"`
	Folder              string            `json:"Folder"`
	Instances           map[string]string `json:"Instances"`
	Extra               map[string]any    `json:"Extra,omitempty"`
}

func toJSON(series model.SeriesUID, sub model.SubSeriesID, rec *model.SeriesRecord) seriesJSON {
	instances := make(map[string]string, len(rec.Instances))
	for sop, path := range rec.Instances {
		instances[string(sop)] = path
	}
	return seriesJSON{
		PatientID:           rec.PatientID,
		StudyInstanceUID:    rec.StudyInstanceUID,
		SeriesInstanceUID:   string(series),
		SubSeries:           string(sub),
		Modality:            rec.Modality,
		FrameOfReferenceUID: rec.FrameOfReferenceUID,
		ReferencedSeriesUID: rec.ReferencedSeriesUID,
		ReferencedModality:  rec.ReferencedModality,
		Folder:              rec.Folder,
		Instances:           instances,
		Extra:               rec.Extra,
	}
}

// WriteCrawlDB writes the full per-series metadata as indented JSON to path,
// matching the upstream engine's crawl_db.json artifact.
func WriteCrawlDB(path string, meta model.SeriesMetaMap) error {
	rows := map[string]map[string]seriesJSON{}
	meta.All(func(series model.SeriesUID, sub model.SubSeriesID, rec *model.SeriesRecord) {
		inner, ok := rows[string(series)]
		if !ok {
			inner = make(map[string]seriesJSON)
			rows[string(series)] = inner
		}
		inner[string(sub)] = toJSON(series, sub, rec)
	})
	return writeJSON(path, rows)
}

// WriteSopMap writes the SOPInstanceUID -> SeriesInstanceUID map as JSON,
// matching the upstream sop_map.json artifact.
func WriteSopMap(path string, sopSeries model.SopSeriesMap) error {
	out := make(map[string]string, len(sopSeries))
	for sop, series := range sopSeries {
		out[string(sop)] = string(series)
	}
	return writeJSON(path, out)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("serialize: create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("serialize: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("serialize: write %s: %w", path, err)
	}
	return nil
}

// csvColumns is the slim-index column set. SubSeries is carried as a column
// but deliberately excluded from the dedup key below (it is the one field
// remove_duplicate_entries ignores upstream), so identical rows differing
// only by acquisition collapse into one line.
var csvColumns = []string{
	"PatientID", "StudyInstanceUID", "SeriesInstanceUID", "SubSeries",
	"Modality", "ReferencedModality", "ReferencedSeriesUID", "Instances", "Folder",
}

// WriteIndexCSV writes the deduplicated slim index, matching the upstream
// index.csv artifact.
func WriteIndexCSV(path string, meta model.SeriesMetaMap) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("serialize: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialize: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("serialize: write header: %w", err)
	}

	seen := make(map[string]struct{})
	var rows [][]string
	meta.All(func(series model.SeriesUID, sub model.SubSeriesID, rec *model.SeriesRecord) {
		row := []string{
			rec.PatientID, rec.StudyInstanceUID, string(series), string(sub),
			rec.Modality, rec.ReferencedModality, rec.ReferencedSeriesUID,
			strconv.Itoa(len(rec.Instances)), rec.Folder,
		}
		// Dedup key skips SubSeries (index 3): rows differing only by
		// acquisition collapse into one line.
		key := fmt.Sprintf("%v", append(append([]string{}, row[:3]...), row[4:]...))
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	})

	sort.Slice(rows, func(i, j int) bool { return rows[i][2] < rows[j][2] })
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("serialize: write row: %w", err)
		}
	}
	return nil
}

// WriteCatalogue renders the slim index into a queryable SQLite database,
// the one artifact this engine adds beyond the JSON/CSV set: a single
// "series" table with the CSV index's columns plus frame_of_reference_uid,
// one row per (SeriesUID, SubSeriesID) with no deduplication, suitable for
// ad hoc SELECTs.
func WriteCatalogue(path string, meta model.SeriesMetaMap) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("serialize: create output dir: %w", err)
	}
	_ = os.Remove(path) // rebuilt fresh on every ingest, never appended to

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("serialize: open catalogue: %w", err)
	}
	defer db.Close()

	const schema = `
CREATE TABLE series (
	patient_id            TEXT,
	study_instance_uid    TEXT,
	series_instance_uid   TEXT,
	sub_series            TEXT,
	modality              TEXT,
	frame_of_reference_uid TEXT,
	referenced_series_uid TEXT,
	referenced_modality   TEXT,
	folder                TEXT,
	instance_count        INTEGER,
	PRIMARY KEY (series_instance_uid, sub_series)
);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("serialize: create schema: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO series (
		patient_id, study_instance_uid, series_instance_uid, sub_series,
		modality, frame_of_reference_uid, referenced_series_uid,
		referenced_modality, folder, instance_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("serialize: prepare insert: %w", err)
	}
	defer stmt.Close()

	var insertErr error
	meta.All(func(series model.SeriesUID, sub model.SubSeriesID, rec *model.SeriesRecord) {
		if insertErr != nil {
			return
		}
		_, insertErr = stmt.Exec(
			rec.PatientID, rec.StudyInstanceUID, string(series), string(sub),
			rec.Modality, rec.FrameOfReferenceUID, rec.ReferencedSeriesUID,
			rec.ReferencedModality, rec.Folder, len(rec.Instances),
		)
	})
	if insertErr != nil {
		return fmt.Errorf("serialize: insert row: %w", insertErr)
	}

	return nil
}
