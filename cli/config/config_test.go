package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/molforge/sdfio/cli/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdfio.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
reader:
  lenient: true
  store_log: true
  index_cache: true
  progress_interval: 30s
output:
  format: yaml
  sdf_version: v3000
browse:
  meta_rows: 5
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Reader.Lenient || !cfg.Reader.StoreLog || !cfg.Reader.IndexCache {
		t.Errorf("reader config = %+v", cfg.Reader)
	}
	if cfg.Reader.ProgressInterval.Duration != 30*time.Second {
		t.Errorf("progress_interval = %v", cfg.Reader.ProgressInterval.Duration)
	}
	if cfg.Output.Format != "yaml" || cfg.Output.SDFVersion != "v3000" {
		t.Errorf("output config = %+v", cfg.Output)
	}
	if cfg.Browse.MetaRows != 5 {
		t.Errorf("meta_rows = %d", cfg.Browse.MetaRows)
	}
}

func TestLoad_DefaultsPreserved(t *testing.T) {
	path := writeConfig(t, "reader:\n  lenient: true\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.SDFVersion != "v2000" {
		t.Errorf("sdf_version default = %q", cfg.Output.SDFVersion)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidEnum(t *testing.T) {
	path := writeConfig(t, "output:\n  format: xml\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for bad format")
	}

	path = writeConfig(t, "output:\n  sdf_version: v4000\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for bad sdf_version")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "reader:\n  progress_interval: soon\n")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for bad duration")
	}
}
