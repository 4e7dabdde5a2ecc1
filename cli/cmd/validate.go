package cmd

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/molforge/sdfio/cli/render"
	"github.com/molforge/sdfio/iox"
	"github.com/molforge/sdfio/log"
	"github.com/molforge/sdfio/sdf"
)

// ValidateResponse is the report emitted by the validate command.
type ValidateResponse struct {
	ReportID string        `json:"report_id"`
	Path     string        `json:"path"`
	Records  int64         `json:"records"`
	Valid    int64         `json:"valid"`
	Invalid  int64         `json:"invalid"`
	Issues   []RecordIssue `json:"issues,omitempty"`
}

// RecordIssue describes one malformed record.
type RecordIssue struct {
	Index   int    `json:"index"`
	Offset  int64  `json:"offset"`
	Message string `json:"message"`
}

// ValidateCommand returns the validate command. Validate parses every
// record and reports the malformed ones without producing output data.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Parse an SD file and report malformed records",
		ArgsUsage: "<input.sdf>",
		Flags:     ReportFlags(),
		Action:    validateAction,
	}
}

func validateAction(c *cli.Context) error {
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

	resp, err := runValidate(r, input)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	rd, err := render.NewRenderer(c, cfg.Output.Format)
	if err != nil {
		return err
	}
	if err := rd.Render(resp); err != nil {
		return err
	}
	if resp.Invalid > 0 {
		// Silent non-zero exit; the report already names the issues.
		return cli.Exit("", 2)
	}
	return nil
}

// runValidate drains the reader and summarizes per-record outcomes.
func runValidate(r *sdf.Reader, path string) (*ValidateResponse, error) {
	resp := &ValidateResponse{
		ReportID: uuid.NewString(),
		Path:     path,
	}
	for {
		res, err := r.Next()
		if err == io.EOF {
			return resp, nil
		}
		if err != nil {
			return nil, err
		}

		resp.Records++
		if res.Ok() {
			resp.Valid++
			continue
		}
		resp.Invalid++
		msg, _, _ := strings.Cut(res.Err.Log, "\n")
		resp.Issues = append(resp.Issues, RecordIssue{
			Index:   res.Err.Index,
			Offset:  res.Err.Offset,
			Message: msg,
		})
	}
}
