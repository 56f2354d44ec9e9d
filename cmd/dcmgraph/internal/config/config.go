// Package config holds the CLI-wide flags every subcommand receives,
// separate from internal/config's per-ingest IngestOptions.
package config

// OutputFormat selects how a command renders its results.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

// GlobalConfig is embedded into the root CLI struct so every subcommand's
// Run method receives it without re-declaring the same flags.
type GlobalConfig struct {
	LogLevel string       `name:"log-level" enum:"trace,debug,info,warn,error,fatal" default:"info" help:"Logging verbosity"`
	Debug    bool         `name:"debug" help:"Enable caller-annotated debug logging"`
	Pretty   bool         `name:"pretty" default:"true" negatable:"" help:"Human-readable logs instead of JSON"`
	Format   OutputFormat `name:"format" enum:"table,json" default:"table" help:"Result rendering format"`
}
