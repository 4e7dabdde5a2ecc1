package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/molforge/sdfio/cli/tui"
	"github.com/molforge/sdfio/iox"
	"github.com/molforge/sdfio/sdf"
)

// BrowseCommand returns the browse command: an interactive, read-only
// record browser over an indexed SD file.
func BrowseCommand() *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "Interactively browse an SD file record by record",
		ArgsUsage: "<input.sdf>",
		Flags:     append(ReaderFlags(), IndexCacheFlag),
		Action:    browseAction,
	}
}

func browseAction(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// No Logger here: stderr noise corrupts the alternate screen.
	opts := readerOptions(c, cfg, nil)
	r, err := sdf.OpenIndexed(input, opts)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer iox.DiscardClose(r)

	return tui.RunBrowse(r, input, cfg.Browse.MetaRows)
}
