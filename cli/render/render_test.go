package render_test

import (
	"strings"
	"testing"

	"github.com/molforge/sdfio/cli/render"
)

type sampleReport struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Errors  int    `json:"errors"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    render.Format
		wantErr bool
	}{
		{"json", render.FormatJSON, false},
		{"TABLE", render.FormatTable, false},
		{"yaml", render.FormatYAML, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := render.ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRender_JSON(t *testing.T) {
	var buf strings.Builder
	r := render.NewRendererWithWriter(render.FormatJSON, &buf)
	if err := r.Render(sampleReport{Path: "in.sdf", Records: 10, Errors: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"path": "in.sdf"`) || !strings.Contains(out, `"records": 10`) {
		t.Errorf("json output = %s", out)
	}
}

func TestRender_YAML(t *testing.T) {
	var buf strings.Builder
	r := render.NewRendererWithWriter(render.FormatYAML, &buf)
	if err := r.Render(sampleReport{Path: "in.sdf", Records: 10}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "path: in.sdf") {
		t.Errorf("yaml output = %s", buf.String())
	}
}

func TestRender_StructTable(t *testing.T) {
	var buf strings.Builder
	r := render.NewRendererWithWriter(render.FormatTable, &buf)
	if err := r.Render(sampleReport{Path: "in.sdf", Records: 10, Errors: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"path:", "in.sdf", "records:", "10"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_SliceTable(t *testing.T) {
	var buf strings.Builder
	r := render.NewRendererWithWriter(render.FormatTable, &buf)
	rows := []sampleReport{
		{Path: "a.sdf", Records: 1},
		{Path: "b.sdf", Records: 2},
	}
	if err := r.Render(rows); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "path") || !strings.Contains(out, "a.sdf") || !strings.Contains(out, "b.sdf") {
		t.Errorf("slice table output:\n%s", out)
	}
}

func TestRender_EmptySlice(t *testing.T) {
	var buf strings.Builder
	r := render.NewRendererWithWriter(render.FormatTable, &buf)
	if err := r.Render([]sampleReport{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "(no results)") {
		t.Errorf("empty slice output = %q", buf.String())
	}
}
