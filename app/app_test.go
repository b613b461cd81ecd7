package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		dumpJSON = false
	})

	err := rootCmd.Execute()

	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("PHARMADESK_CONFIG_JSON", "")

	out, err := run(t, "config", "--config", "../etc/")
	require.NoError(t, err)
	assert.Contains(t, out, "[Webserver]")
	assert.Contains(t, out, "[Bootstrap]")

	out, err = run(t, "config", "--config", "../etc/", "--json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "Auth")
}

func TestConfigCommandMissingFile(t *testing.T) {
	_, err := run(t, "config", "--config", t.TempDir()+"/")
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"start", "seed", "config"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
