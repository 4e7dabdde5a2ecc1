package cmd

import (
	"strings"
	"testing"

	"github.com/molforge/sdfio/sdf"
)

const goodRecord = `benzaldehyde


  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.2000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  2  0  0  0  0
M  END
>  <assay>
inactive

$$$$
`

const badRecord = `garbage


  1  0  0  0  0  0  0  0  0  0999 V2000
not an atom line
M  END
$$$$
`

func testReader(content string, opts sdf.Options) *sdf.Reader {
	return sdf.NewReader(strings.NewReader(content), opts)
}

func TestConvertStream_StrictAbortsOnError(t *testing.T) {
	r := testReader(goodRecord+badRecord+goodRecord, sdf.Options{})
	var out strings.Builder

	records, skipped, err := convertStream(r, sdf.NewWriter(&out), false, 0, nil)
	if err == nil {
		t.Fatal("expected error on malformed record")
	}
	if records != 1 || skipped != 0 {
		t.Errorf("records = %d, skipped = %d", records, skipped)
	}
}

func TestConvertStream_SkipErrors(t *testing.T) {
	r := testReader(goodRecord+badRecord+goodRecord, sdf.Options{})
	var out strings.Builder

	records, skipped, err := convertStream(r, sdf.NewWriter(&out), true, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if records != 2 || skipped != 1 {
		t.Errorf("records = %d, skipped = %d", records, skipped)
	}
	if n := strings.Count(out.String(), sdf.Delimiter); n != 2 {
		t.Errorf("output holds %d records", n)
	}
}

func TestRunValidate(t *testing.T) {
	r := testReader(goodRecord+badRecord, sdf.Options{})

	resp, err := runValidate(r, "input.sdf")
	if err != nil {
		t.Fatal(err)
	}
	if resp.ReportID == "" {
		t.Error("missing report id")
	}
	if resp.Records != 2 || resp.Valid != 1 || resp.Invalid != 1 {
		t.Errorf("counts = %+v", resp)
	}
	if len(resp.Issues) != 1 {
		t.Fatalf("issues = %+v", resp.Issues)
	}
	issue := resp.Issues[0]
	if issue.Index != 1 || issue.Message == "" {
		t.Errorf("issue = %+v", issue)
	}
	if strings.Contains(issue.Message, "\n") {
		t.Error("issue message should be a single line")
	}
}

func TestRunValidate_CleanFile(t *testing.T) {
	r := testReader(goodRecord+goodRecord, sdf.Options{})

	resp, err := runValidate(r, "input.sdf")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Invalid != 0 || len(resp.Issues) != 0 {
		t.Errorf("clean file reported issues: %+v", resp)
	}
}

func TestCollectInfo(t *testing.T) {
	content := goodRecord + badRecord + goodRecord
	r := testReader(content, sdf.Options{})

	resp, err := collectInfo(r, "input.sdf")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Records != 3 || resp.Parsed != 2 || resp.Malformed != 1 {
		t.Errorf("record counts = %+v", resp)
	}
	if resp.Atoms != 4 || resp.Bonds != 2 {
		t.Errorf("structure totals = %+v", resp)
	}
	if len(resp.MetaKeys) != 1 || resp.MetaKeys[0] != "assay" {
		t.Errorf("meta keys = %v", resp.MetaKeys)
	}
	if resp.SizeBytes != int64(len(content)) {
		t.Errorf("size = %d, want %d", resp.SizeBytes, len(content))
	}
}
