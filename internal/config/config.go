// Package config holds the validated options the root orchestrator accepts,
// following the corpus's go-playground/validator struct-tag convention for
// input validation rather than hand-rolled if-checks scattered through the
// orchestrator.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IngestOptions configures one ingestion run end to end.
type IngestOptions struct {
	// DicomDir is the root directory to crawl. Required.
	DicomDir string `validate:"required,dir"`
	// OutputDir holds the DatasetName subdirectory that receives
	// crawl_db.json, crawl-cache.json, sop_map.json, index.csv, and
	// catalogue.db. Required.
	OutputDir string `validate:"required"`
	// DatasetName names the subdirectory of OutputDir the artifacts are
	// written to; defaults to the base name of DicomDir when empty.
	DatasetName string
	// Extension filters which files the locator considers, matched
	// case-insensitively. Defaults to ".dcm".
	Extension string `validate:"omitempty,startswith=."`
	// Workers bounds crawl concurrency; <= 0 means GOMAXPROCS.
	Workers int
	// Force re-crawls even when a matching crawl-cache.json is present.
	Force bool
}

// Validate checks opts against its struct tags and returns a wrapped error
// naming every failing field.
func (opts IngestOptions) Validate() error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("config: invalid ingest options: %w", err)
	}
	return nil
}

// WithDefaults returns a copy of opts with DatasetName/Extension filled in
// when left empty.
func (opts IngestOptions) WithDefaults() IngestOptions {
	if opts.Extension == "" {
		opts.Extension = ".dcm"
	}
	if opts.DatasetName == "" {
		opts.DatasetName = filepath.Base(opts.DicomDir)
	}
	return opts
}
