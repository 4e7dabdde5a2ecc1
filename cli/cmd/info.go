package cmd

import (
	"io"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/molforge/sdfio/cli/render"
	"github.com/molforge/sdfio/iox"
	"github.com/molforge/sdfio/log"
	"github.com/molforge/sdfio/sdf"
)

// InfoResponse is the report emitted by the info command.
type InfoResponse struct {
	Path      string   `json:"path"`
	SizeBytes int64    `json:"size_bytes"`
	Records   int64    `json:"records"`
	Parsed    int64    `json:"parsed"`
	Malformed int64    `json:"malformed"`
	Atoms     int64    `json:"atoms"`
	Bonds     int64    `json:"bonds"`
	MetaKeys  []string `json:"meta_keys,omitempty"`
}

// InfoCommand returns the info command. Info streams the whole file and
// aggregates structural totals plus the union of metadata keys.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Summarize an SD file: record, atom, and metadata totals",
		ArgsUsage: "<input.sdf>",
		Flags:     ReportFlags(),
		Action:    infoAction,
	}
}

func infoAction(c *cli.Context) error {
	input, err := inputArg(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger := log.NewLogger(input)
	r, err := sdf.Open(input, readerOptions(c, cfg, logger))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer iox.DiscardClose(r)

	resp, err := collectInfo(r, input)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	rd, err := render.NewRenderer(c, cfg.Output.Format)
	if err != nil {
		return err
	}
	return rd.Render(resp)
}

// collectInfo drains the reader and aggregates totals.
func collectInfo(r *sdf.Reader, path string) (*InfoResponse, error) {
	resp := &InfoResponse{Path: path}
	keys := make(map[string]struct{})

	for {
		res, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		resp.Records++
		if !res.Ok() {
			resp.Malformed++
			continue
		}
		resp.Parsed++
		resp.Atoms += int64(res.Molecule.AtomCount())
		resp.Bonds += int64(res.Molecule.BondCount())
		for _, k := range res.Molecule.Meta.Keys() {
			keys[k] = struct{}{}
		}
	}

	resp.SizeBytes = r.Stats().BytesRead
	for k := range keys {
		resp.MetaKeys = append(resp.MetaKeys, k)
	}
	sort.Strings(resp.MetaKeys)
	return resp, nil
}
