// Package cli wires the dcmgraph CLI's kong command tree together.
package cli

import (
	"github.com/alecthomas/kong"

	"github.com/codeninja55/dcmgraph/cmd/dcmgraph/internal/build"
	"github.com/codeninja55/dcmgraph/cmd/dcmgraph/internal/commands"
	"github.com/codeninja55/dcmgraph/cmd/dcmgraph/internal/config"
)

const (
	appName        = "dcmgraph"
	appDescription = "Cross-referential DICOM series graph builder"
)

// CLI is the root command structure.
type CLI struct {
	config.GlobalConfig

	Ingest commands.IngestCmd `cmd:"" help:"Crawl a directory of DICOM files and resolve cross-series references"`
	Query  commands.QueryCmd  `cmd:"" help:"Query an ingested dataset's reference forest by modality chain"`
}

// Run parses os.Args-equivalent input and executes the selected subcommand.
func Run(version, commit, date string) error {
	build.SetBuildInfo(version, commit, date)

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{
			"version": version,
			"commit":  commit,
			"date":    date,
		},
	)

	return ctx.Run(&cli.GlobalConfig)
}
