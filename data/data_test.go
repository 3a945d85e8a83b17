package data_test

import (
	"reflect"
	"testing"

	"github.com/samdwyer/corun/data"
	"github.com/samdwyer/corun/internal/config"
	"github.com/samdwyer/corun/internal/script"
)

func TestSampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := config.Parse(data.SampleConfig)
	if err != nil {
		t.Fatalf("Parse(SampleConfig) error = %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Default()) {
		t.Errorf("SampleConfig = %+v, want %+v", cfg, config.Default())
	}
}

func TestScriptsCompile(t *testing.T) {
	e := script.NewEngine()
	if err := e.LoadFS(data.Scripts(), data.ScriptPattern); err != nil {
		t.Fatalf("LoadFS() error = %v", err)
	}
	for _, name := range []string{"skitter.lua", "wanderer.lua"} {
		if !e.Has(name) {
			t.Errorf("Has(%q) = false, want true", name)
		}
	}
}
