package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeninja55/dcmgraph"
	cliconfig "github.com/codeninja55/dcmgraph/cmd/dcmgraph/internal/config"
	"github.com/codeninja55/dcmgraph/cmd/dcmgraph/internal/ui"
)

// QueryCmd matches a modality chain against a previously ingested dataset's
// reference forest.
type QueryCmd struct {
	OutputDir   string   `name:"output" short:"o" required:"" help:"Output directory of a prior ingest"`
	DatasetName string   `name:"dataset-name" help:"Dataset subdirectory under output, as passed to ingest"`
	Modality    []string `arg:"" help:"Modality chain to query, e.g. CT RTSTRUCT RTDOSE"`
}

// Run executes the query command.
func (c *QueryCmd) Run(cfg *cliconfig.GlobalConfig) error {
	logger := setupLogger(cfg)

	datasetDir := c.OutputDir
	if c.DatasetName != "" {
		datasetDir = filepath.Join(c.OutputDir, c.DatasetName)
	}

	forest, _, err := dcmgraph.LoadForest(datasetDir)
	if err != nil {
		return fmt.Errorf("load forest: %w", err)
	}

	query := make([]string, len(c.Modality))
	for i, m := range c.Modality {
		query[i] = strings.ToUpper(m)
	}

	logger.Debug("running query", "modalities", query)
	results, err := forest.Query(query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	logger.Info("query complete", "matches", len(results))
	return ui.RenderQueryResults(results, cfg.Format, os.Stdout)
}
