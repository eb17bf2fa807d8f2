package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCommand(t *testing.T, name string) *cobra.Command {
	t.Helper()
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name {
			return cmd
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func TestCommandsRegistered(t *testing.T) {
	aliases := map[string]string{
		"generate": "g",
		"pages":    "p",
		"cards":    "c",
		"list":     "l",
		"watch":    "w",
	}
	for name, alias := range aliases {
		cmd := findCommand(t, name)
		assert.Contains(t, cmd.Aliases, alias, name)
	}
	findCommand(t, "validate")
	findCommand(t, "version")
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestOutputOverrideFlags(t *testing.T) {
	gen := findCommand(t, "generate")
	require.NotNil(t, gen.Flags().Lookup("pages-out"))
	require.NotNil(t, gen.Flags().Lookup("cards-out"))

	for _, name := range []string{"pages", "cards"} {
		cmd := findCommand(t, name)
		flag := cmd.Flags().Lookup("output")
		require.NotNil(t, flag, name)
		assert.Equal(t, "o", flag.Shorthand, name)
	}
}

func TestListFlags(t *testing.T) {
	list := findCommand(t, "list")

	format := list.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "table", format.DefValue)

	speakers := list.Flags().Lookup("with-speakers")
	require.NotNil(t, speakers)
	assert.Equal(t, "s", speakers.Shorthand)
}

func TestEnumValue(t *testing.T) {
	var target string
	v := newEnumValue(&target, "table", "table", "json", "yaml")

	assert.Equal(t, "table", v.String())
	assert.Equal(t, "string", v.Type())

	require.NoError(t, v.Set("json"))
	assert.Equal(t, "json", target)

	err := v.Set("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, json, yaml")
	assert.Equal(t, "json", target)
}

func TestWatchDebounceDefault(t *testing.T) {
	watch := findCommand(t, "watch")
	flag := watch.Flags().Lookup("debounce")
	require.NotNil(t, flag)
	assert.Equal(t, "500ms", flag.DefValue)
}
