// Package cmd provides CLI commands for the sdfio binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags across commands.
var (
	// ConfigFlag points at an sdfio.yaml config file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to sdfio.yaml config file",
	}

	// FormatFlag selects report format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Report format: json, table, yaml",
	}

	// LenientFlag enables the V3000 retry for empty V2000 counts lines.
	LenientFlag = &cli.BoolFlag{
		Name:  "lenient",
		Usage: "Retry empty V2000 counts lines as V3000",
	}

	// StoreLogFlag attaches parser diagnostics to molecule metadata.
	StoreLogFlag = &cli.BoolFlag{
		Name:  "store-log",
		Usage: "Attach parser diagnostics to molecule metadata",
	}

	// IndexCacheFlag persists offset tables in sidecar files.
	IndexCacheFlag = &cli.BoolFlag{
		Name:  "index-cache",
		Usage: "Cache the record offset table next to the input file",
	}
)

// ReaderFlags returns the flags shared by every command that parses an
// SD file.
func ReaderFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		LenientFlag,
		StoreLogFlag,
	}
}

// ReportFlags returns ReaderFlags plus report formatting.
func ReportFlags() []cli.Flag {
	return append(ReaderFlags(), FormatFlag)
}
