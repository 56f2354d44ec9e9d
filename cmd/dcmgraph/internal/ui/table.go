package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexeyco/simpletable"

	"github.com/codeninja55/dcmgraph/cmd/dcmgraph/internal/config"
	"github.com/codeninja55/dcmgraph/internal/interlace"
)

// RenderQueryResults writes results to w in the requested format.
func RenderQueryResults(results []interlace.Result, format config.OutputFormat, w io.Writer) error {
	if format == config.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(results)
	}
	return renderQueryTable(results, w)
}

func renderQueryTable(results []interlace.Result, w io.Writer) error {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "Root Series"},
			{Align: simpletable.AlignCenter, Text: "Chain"},
		},
	}

	for _, r := range results {
		chain := ""
		for i, n := range r.Nodes {
			if i > 0 {
				chain += " -> "
			}
			chain += fmt.Sprintf("%s(%s)", n.Modality, n.Series)
		}
		table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
			{Text: string(r.Root)},
			{Text: chain},
		})
	}

	table.SetStyle(simpletable.StyleCompactLite)
	_, err := fmt.Fprintln(w, table.String())
	return err
}

// IngestSummary is the small row set printed after an ingest run.
type IngestSummary struct {
	Series  int
	Files   int
	Failed  int
	Resumed bool
}

// RenderIngestSummary writes a one-table summary of an ingest run.
func RenderIngestSummary(summary IngestSummary, format config.OutputFormat, w io.Writer) error {
	if format == config.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(summary)
	}

	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "Series"},
			{Align: simpletable.AlignCenter, Text: "Files"},
			{Align: simpletable.AlignCenter, Text: "Failed"},
			{Align: simpletable.AlignCenter, Text: "Resumed"},
		},
	}
	table.Body.Cells = [][]*simpletable.Cell{{
		{Text: fmt.Sprintf("%d", summary.Series)},
		{Text: fmt.Sprintf("%d", summary.Files)},
		{Text: fmt.Sprintf("%d", summary.Failed)},
		{Text: fmt.Sprintf("%t", summary.Resumed)},
	}}
	table.SetStyle(simpletable.StyleCompactLite)
	_, err := fmt.Fprintln(w, table.String())
	return err
}
