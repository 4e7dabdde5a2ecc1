package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/molforge/sdfio/cli/render"
	"github.com/molforge/sdfio/iox"
	"github.com/molforge/sdfio/log"
	"github.com/molforge/sdfio/sdf"
)

// IndexResponse is the report emitted by the index command.
type IndexResponse struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Cache   string `json:"cache"`
}

// IndexCommand returns the index command. Index scans the file for
// record boundaries and persists the offset table as a sidecar cache so
// later seekable opens skip the scan.
func IndexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Build and cache the record offset table for an SD file",
		ArgsUsage: "<input.sdf>",
		Flags:     []cli.Flag{ConfigFlag, FormatFlag},
		Action:    indexAction,
	}
}

func indexAction(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	r, err := sdf.OpenIndexed(input, sdf.Options{
		IndexCache: true,
		Logger:     log.NewLogger(input),
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer iox.DiscardClose(r)

	records, err := r.Len()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	rd, err := render.NewRenderer(c, cfg.Output.Format)
	if err != nil {
		return err
	}
	return rd.Render(IndexResponse{
		Path:    input,
		Records: records,
		Cache:   input + sdf.CacheSuffix,
	})
}
