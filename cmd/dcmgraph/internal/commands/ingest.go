package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/codeninja55/dcmgraph"
	cliconfig "github.com/codeninja55/dcmgraph/cmd/dcmgraph/internal/config"
	"github.com/codeninja55/dcmgraph/cmd/dcmgraph/internal/ui"
	"github.com/codeninja55/dcmgraph/internal/config"
)

// IngestCmd crawls a directory of DICOM files and writes the resolved
// metadata artifacts (crawl_db.json, sop_map.json, index.csv, catalogue.db).
type IngestCmd struct {
	DicomDir    string `arg:"" type:"existingdir" help:"Directory to crawl for DICOM files"`
	OutputDir   string `name:"output" short:"o" required:"" help:"Directory to write crawl artifacts to"`
	DatasetName string `name:"dataset-name" help:"Subdirectory of output to tag this run's artifacts with (default: DicomDir's base name)"`
	Extension   string `name:"ext" default:".dcm" help:"File extension to match"`
	Workers     int    `name:"workers" short:"w" help:"Concurrent extraction workers (0 = GOMAXPROCS)"`
	Force       bool   `name:"force" help:"Re-crawl even if a matching cache is present"`
}

// Run executes the ingest command.
func (c *IngestCmd) Run(cfg *cliconfig.GlobalConfig) error {
	ui.PrintBanner()
	logger := setupLogger(cfg)

	opts := config.IngestOptions{
		DicomDir:    c.DicomDir,
		OutputDir:   c.OutputDir,
		DatasetName: c.DatasetName,
		Extension:   c.Extension,
		Workers:     c.Workers,
		Force:       c.Force,
	}

	logger.Info("starting ingest", "dir", c.DicomDir, "output", c.OutputDir)
	result, err := dcmgraph.ParseDicomDir(context.Background(), opts, logger)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fileCount := 0
	for _, sub := range result.Meta {
		for _, rec := range sub {
			fileCount += len(rec.Instances)
		}
	}

	summary := ui.IngestSummary{
		Series:  len(result.Meta),
		Files:   fileCount,
		Failed:  len(result.Failed),
		Resumed: result.Resumed,
	}
	logger.Info("ingest complete", "series", summary.Series, "files", summary.Files, "failed", summary.Failed)

	return ui.RenderIngestSummary(summary, cfg.Format, os.Stdout)
}
