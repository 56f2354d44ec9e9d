// Package dcmgraph ties the crawl, resolve, serialize, and interlace stages
// into one ingestion pipeline (C9): given a directory of DICOM files it
// builds a resolved SeriesMetaMap, serializes it to disk, and returns a
// ready-to-query Forest.
package dcmgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codeninja55/dcmgraph/internal/config"
	"github.com/codeninja55/dcmgraph/internal/crawl"
	"github.com/codeninja55/dcmgraph/internal/interlace"
	"github.com/codeninja55/dcmgraph/internal/locate"
	"github.com/codeninja55/dcmgraph/internal/model"
	"github.com/codeninja55/dcmgraph/internal/resolve"
	"github.com/codeninja55/dcmgraph/internal/serialize"
)

// ErrEmptyInput is returned when the locator finds no matching files under
// DicomDir.
var ErrEmptyInput = errors.New("dcmgraph: no DICOM files found")

// stage names the ingestion state machine's states, logged at Debug level
// as the pipeline advances: START -> LOCATED -> PARSED -> RESOLVED ->
// SERIALIZED -> READY.
type stage string

const (
	stageStart      stage = "START"
	stageLocated    stage = "LOCATED"
	stageParsed     stage = "PARSED"
	stageResolved   stage = "RESOLVED"
	stageSerialized stage = "SERIALIZED"
	stageReady      stage = "READY"
)

// IngestResult is the output of a completed ingestion: the resolved
// metadata, the built forest ready for Query, and where the run wrote its
// artifacts.
type IngestResult struct {
	Meta      model.SeriesMetaMap
	SopSeries model.SopSeriesMap
	Forest    *interlace.Forest
	Failed    map[string]error
	OutputDir string
	Resumed   bool
}

// cacheSentinel is the cache-resume marker recording this run's options, so
// a second ingest of an unchanged directory can skip straight to
// deserializing crawl_db.json instead of re-parsing every file.
type cacheSentinel struct {
	DicomDir  string    `json:"dicom_dir"`
	Extension string    `json:"extension"`
	CrawledAt time.Time `json:"crawled_at"`
}

// ParseDicomDir runs the full ingestion pipeline for opts. logger may be
// nil; core stages never log above Debug/Warn, leaving Fatal-level
// decisions to the caller.
func ParseDicomDir(ctx context.Context, opts config.IngestOptions, logger *log.Logger) (*IngestResult, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("ingest stage", "stage", stageStart, "dir", opts.DicomDir)

	datasetDir := filepath.Join(opts.OutputDir, opts.DatasetName)
	if err := os.MkdirAll(datasetDir, 0o755); err != nil {
		return nil, fmt.Errorf("dcmgraph: create dataset dir: %w", err)
	}

	cachePath := filepath.Join(datasetDir, "crawl-cache.json")
	if !opts.Force {
		if result, ok := tryResume(opts, datasetDir, cachePath, logger); ok {
			return result, nil
		}
	}

	files, err := locate.Find(opts.DicomDir, locate.Options{Extension: opts.Extension, Recursive: true})
	if err != nil {
		return nil, fmt.Errorf("dcmgraph: locate: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrEmptyInput
	}
	logger.Debug("ingest stage", "stage", stageLocated, "files", len(files))

	crawlResult := crawl.Files(ctx, files, crawl.Options{Workers: opts.Workers, Root: opts.DicomDir})
	for path, ferr := range crawlResult.Failed {
		logger.Warn("file failed extraction", "path", path, "error", ferr)
	}
	logger.Debug("ingest stage", "stage", stageParsed, "series", len(crawlResult.Meta))

	resolve.Run(crawlResult.Meta, crawlResult.SopSeries)
	logger.Debug("ingest stage", "stage", stageResolved)

	if err := writeArtifacts(datasetDir, crawlResult); err != nil {
		return nil, err
	}
	if err := writeCacheSentinel(cachePath, opts); err != nil {
		logger.Warn("failed to write cache sentinel", "error", err)
	}
	logger.Debug("ingest stage", "stage", stageSerialized, "dir", datasetDir)

	forest := interlace.Build(crawlResult.Meta, interlace.GroupByReference)
	logger.Debug("ingest stage", "stage", stageReady)

	return &IngestResult{
		Meta:      crawlResult.Meta,
		SopSeries: crawlResult.SopSeries,
		Forest:    forest,
		Failed:    crawlResult.Failed,
		OutputDir: datasetDir,
	}, nil
}

// LoadForest reads a prior ingest's crawl_db.json/sop_map.json back from
// outputDir and builds a Forest from it, without re-crawling. Used by the
// query command to operate against an already-ingested dataset.
func LoadForest(outputDir string) (*interlace.Forest, model.SeriesMetaMap, error) {
	meta, _, err := loadArtifacts(outputDir)
	if err != nil {
		return nil, nil, err
	}
	return interlace.Build(meta, interlace.GroupByReference), meta, nil
}

// tryResume loads a previously serialized crawl_db.json/sop_map.json pair
// when cachePath exists and still points at the same DicomDir/Extension,
// skipping the locate/crawl/resolve stages entirely.
func tryResume(opts config.IngestOptions, datasetDir, cachePath string, logger *log.Logger) (*IngestResult, bool) {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	var sentinel cacheSentinel
	if err := json.Unmarshal(data, &sentinel); err != nil {
		return nil, false
	}
	if sentinel.DicomDir != opts.DicomDir || sentinel.Extension != opts.Extension {
		return nil, false
	}

	meta, sopSeries, err := loadArtifacts(datasetDir)
	if err != nil {
		logger.Debug("cache sentinel present but artifacts unreadable, re-crawling", "error", err)
		return nil, false
	}

	logger.Debug("ingest stage", "stage", stageReady, "resumed", true)
	return &IngestResult{
		Meta:      meta,
		SopSeries: sopSeries,
		Forest:    interlace.Build(meta, interlace.GroupByReference),
		Failed:    map[string]error{},
		OutputDir: datasetDir,
		Resumed:   true,
	}, true
}

func writeArtifacts(outputDir string, result *crawl.Result) error {
	if err := serialize.WriteCrawlDB(filepath.Join(outputDir, "crawl_db.json"), result.Meta); err != nil {
		return err
	}
	if err := serialize.WriteSopMap(filepath.Join(outputDir, "sop_map.json"), result.SopSeries); err != nil {
		return err
	}
	if err := serialize.WriteIndexCSV(filepath.Join(outputDir, "index.csv"), result.Meta); err != nil {
		return err
	}
	if err := serialize.WriteCatalogue(filepath.Join(outputDir, "catalogue.db"), result.Meta); err != nil {
		return err
	}
	return nil
}

func writeCacheSentinel(path string, opts config.IngestOptions) error {
	sentinel := cacheSentinel{DicomDir: opts.DicomDir, Extension: opts.Extension, CrawledAt: time.Now()}
	data, err := json.MarshalIndent(sentinel, "", "    ")
	if err != nil {
		return fmt.Errorf("dcmgraph: marshal cache sentinel: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// loadArtifacts reparses crawl_db.json/sop_map.json back into the same
// shapes the crawl/resolve stages produce, used by the resume path and by
// LoadForest.
func loadArtifacts(outputDir string) (model.SeriesMetaMap, model.SopSeriesMap, error) {
	crawlData, err := os.ReadFile(filepath.Join(outputDir, "crawl_db.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("dcmgraph: read crawl_db.json: %w", err)
	}
	var raw map[string]map[string]struct {
		PatientID           string            `json:"PatientID"`
		StudyInstanceUID    string            `json:"StudyInstanceUID"`
		Modality            string            `json:"Modality"`
		FrameOfReferenceUID string            `json:"FrameOfReferenceUID"`
		ReferencedSeriesUID string            `json:"ReferencedSeriesUID"`
		ReferencedModality  string            `json:"ReferencedModality"`
		Folder              string            `json:"Folder"`
		Instances           map[string]string `json:"Instances"`
		Extra               map[string]any    `json:"Extra"`
	}
	if err := json.Unmarshal(crawlData, &raw); err != nil {
		return nil, nil, fmt.Errorf("dcmgraph: parse crawl_db.json: %w", err)
	}

	meta := make(model.SeriesMetaMap)
	for seriesStr, subMap := range raw {
		series := model.SeriesUID(seriesStr)
		for subStr, row := range subMap {
			rec := model.NewSeriesRecord()
			rec.PatientID = row.PatientID
			rec.StudyInstanceUID = row.StudyInstanceUID
			rec.SeriesInstanceUID = series
			rec.SubSeries = model.SubSeriesID(subStr)
			rec.Modality = row.Modality
			rec.FrameOfReferenceUID = row.FrameOfReferenceUID
			rec.ReferencedSeriesUID = row.ReferencedSeriesUID
			rec.ReferencedModality = row.ReferencedModality
			rec.Folder = row.Folder
			for sop, path := range row.Instances {
				rec.Instances[model.SopUID(sop)] = path
			}
			if row.Extra != nil {
				rec.Extra = row.Extra
			}
			meta.Put(series, model.SubSeriesID(subStr), rec)
		}
	}

	sopData, err := os.ReadFile(filepath.Join(outputDir, "sop_map.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("dcmgraph: read sop_map.json: %w", err)
	}
	var rawSop map[string]string
	if err := json.Unmarshal(sopData, &rawSop); err != nil {
		return nil, nil, fmt.Errorf("dcmgraph: parse sop_map.json: %w", err)
	}
	sopSeries := make(model.SopSeriesMap, len(rawSop))
	for sop, series := range rawSop {
		sopSeries[model.SopUID(sop)] = model.SeriesUID(series)
	}

	return meta, sopSeries, nil
}
