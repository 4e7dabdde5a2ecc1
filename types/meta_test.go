package types_test

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/molforge/sdfio/types"
)

func TestMeta_InsertionOrder(t *testing.T) {
	m := types.NewMeta()
	m.Set("logP", "1.2")
	m.Set("CAS", "50-00-0")
	m.Set("logP", "1.4") // update keeps position

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "logP" || keys[1] != "CAS" {
		t.Fatalf("unexpected key order: %v", keys)
	}

	v, ok := m.Get("logP")
	if !ok || v != "1.4" {
		t.Errorf("expected updated value 1.4, got %q (ok=%v)", v, ok)
	}
}

func TestMeta_Del(t *testing.T) {
	m := types.NewMeta()
	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("c", "3")
	m.Del("b")

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Fatalf("unexpected keys after delete: %v", keys)
	}
	if m.Has("b") {
		t.Error("deleted key still present")
	}
}

func TestMeta_JSONRoundTrip(t *testing.T) {
	m := types.NewMeta()
	m.Set("zeta", "last shall be first")
	m.Set("alpha", "multi\nline\nvalue")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := types.NewMeta()
	if err := json.Unmarshal(data, got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	keys := got.Keys()
	if len(keys) != 2 || keys[0] != "zeta" || keys[1] != "alpha" {
		t.Fatalf("order not preserved through JSON: %v", keys)
	}
	if v, _ := got.Get("alpha"); v != "multi\nline\nvalue" {
		t.Errorf("multi-line value mangled: %q", v)
	}
}

func TestMeta_YAMLRoundTrip(t *testing.T) {
	m := types.NewMeta()
	m.Set("b", "2")
	m.Set("a", "1")

	data, err := yaml.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := types.NewMeta()
	if err := yaml.Unmarshal(data, got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	keys := got.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("order not preserved through YAML: %v", keys)
	}
}
