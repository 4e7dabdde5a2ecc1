package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/molforge/sdfio/cli/render"
	"github.com/molforge/sdfio/iox"
	"github.com/molforge/sdfio/log"
	"github.com/molforge/sdfio/sdf"
	"github.com/molforge/sdfio/types"
)

// ConvertResponse is the report emitted after a convert run.
type ConvertResponse struct {
	Input      string `json:"input"`
	Output     string `json:"output"`
	SDFVersion string `json:"sdf_version"`
	Records    int64  `json:"records"`
	Skipped    int64  `json:"skipped"`
}

// recordWriter is satisfied by both SD file writer variants.
type recordWriter interface {
	Write(mol *types.Molecule) error
}

// ConvertCommand returns the convert command. Convert re-serializes an
// SD file record by record, normalizing the molblock dialect.
func ConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Re-serialize an SD file as V2000 or V3000",
		ArgsUsage: "<input.sdf>",
		Flags: append(ReportFlags(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path (default: stdout)",
			},
			&cli.StringFlag{
				Name:  "sdf-version",
				Usage: "Output dialect: v2000 or v3000",
			},
			&cli.BoolFlag{
				Name:  "skip-errors",
				Usage: "Skip malformed records instead of aborting",
			},
		),
		Action: convertAction,
	}
}

func convertAction(c *cli.Context) error {
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

	outPath := c.String("output")
	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		defer iox.DiscardClose(f)
		bw := bufio.NewWriter(f)
		defer iox.DiscardErr(bw.Flush)
		out = bw
	}

	version := c.String("sdf-version")
	if version == "" {
		version = cfg.Output.SDFVersion
	}
	var w recordWriter
	switch version {
	case "", "v2000":
		version = "v2000"
		w = sdf.NewWriter(out)
	case "v3000":
		w = sdf.NewV3000Writer(out)
	default:
		return cli.Exit(fmt.Sprintf("invalid sdf-version %q (must be v2000 or v3000)", version), 1)
	}

	records, skipped, err := convertStream(r, w, c.Bool("skip-errors"), cfg.Reader.ProgressInterval.Duration, logger)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	resp := ConvertResponse{
		Input:      input,
		Output:     outPath,
		SDFVersion: version,
		Records:    records,
		Skipped:    skipped,
	}
	if outPath == "" {
		// The converted stream owns stdout; report through the logger.
		logger.Info("convert complete", map[string]any{
			"records": records,
			"skipped": skipped,
		})
		return nil
	}
	rd, err := render.NewRenderer(c, cfg.Output.Format)
	if err != nil {
		return err
	}
	return rd.Render(resp)
}

// convertStream pumps records from reader to writer. Malformed records
// abort the conversion unless skipErrors is set.
func convertStream(r *sdf.Reader, w recordWriter, skipErrors bool, progress time.Duration, logger *log.Logger) (records, skipped int64, err error) {
	last := time.Now()
	for {
		res, err := r.Next()
		if err == io.EOF {
			return records, skipped, nil
		}
		if err != nil {
			return records, skipped, err
		}

		if !res.Ok() {
			if !skipErrors {
				return records, skipped, fmt.Errorf("malformed record: %w", res.Err)
			}
			skipped++
			continue
		}
		if err := w.Write(res.Molecule); err != nil {
			return records, skipped, err
		}
		records++

		if progress > 0 && time.Since(last) >= progress {
			last = time.Now()
			logger.Info("convert progress", map[string]any{
				"records": records,
				"skipped": skipped,
			})
		}
	}
}
