package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/queueing-sim/sim/scenario"
)

// Preset is a named scenario in presets.yaml.
type Preset struct {
	Description     string `yaml:"description"`
	scenario.Config `yaml:",inline"`
}

// Presets represents the full presets.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Presets struct {
	Version   string            `yaml:"version"`
	Scenarios map[string]Preset `yaml:"scenarios"`
}

// loadPresets parses presets.yaml with strict field checking.
func loadPresets(path string) (*Presets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}
	var p Presets
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing presets file %s: %w", path, err)
	}
	return &p, nil
}

// Lookup returns the scenario of a preset, named after the preset when the
// scenario itself has no name.
func (p *Presets) Lookup(name string) (scenario.Config, error) {
	preset, ok := p.Scenarios[name]
	if !ok {
		return scenario.Config{}, fmt.Errorf("unknown preset %q; available: %v", name, p.Names())
	}
	cfg := preset.Config
	if cfg.Name == "" {
		cfg.Name = name
	}
	return cfg, nil
}

// Names returns the preset names in sorted order.
func (p *Presets) Names() []string {
	names := make([]string, 0, len(p.Scenarios))
	for name := range p.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
