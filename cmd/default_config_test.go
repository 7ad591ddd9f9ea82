package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPresets_RepositoryFile_AllScenariosValid(t *testing.T) {
	// GIVEN the presets shipped with the repository
	p, err := loadPresets(repoPresets)
	require.NoError(t, err)

	// THEN it holds the bank, station and network scenarios
	assert.Equal(t, []string{"bank-1", "bank-5", "network", "station"}, p.Names())

	// AND each one is a valid scenario named after its preset
	for _, name := range p.Names() {
		cfg, err := p.Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, cfg.Name)
		assert.NoError(t, cfg.WithDefaults().Validate(), name)
	}
}

func TestLoadPresets_UnknownField_Rejected(t *testing.T) {
	// GIVEN a preset with a misspelled key
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "1"
scenarios:
  bank:
    arival_rate: 1
    stations: [{servers: 1, service_rate: 1}]
    horizon: 10
`), 0o644))

	// WHEN loaded
	_, err := loadPresets(path)

	// THEN strict parsing names the typo
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arival_rate")
}

func TestPresets_Lookup_Unknown(t *testing.T) {
	p := &Presets{Scenarios: map[string]Preset{"a": {}, "b": {}}}

	_, err := p.Lookup("c")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown preset "c"`)
	assert.Contains(t, err.Error(), "[a b]")
}

func TestPrintPresets_ListsParameters(t *testing.T) {
	p, err := loadPresets(repoPresets)
	require.NoError(t, err)

	var buf bytes.Buffer
	printPresets(&buf, p)

	out := buf.String()
	assert.Contains(t, out, "bank-5     lambda=1 tellers(c=5, mu=0.25) horizon=480 (drain)")
	assert.Contains(t, out, "ticket_office(c=1, mu=0.125) -> gate(c=1, mu=0.125)")
	assert.Contains(t, out, "(hard horizon)")
}
