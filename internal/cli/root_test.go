package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mutsweep/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mutsweep", cmd.Use)
	assert.Contains(t, cmd.Long, "resumable store")
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := execute(t, toyOptions(), "--version")
	require.NoError(t, err)
	assert.Equal(t, "mutsweep version "+ir.ToolVersion+"\n", stdout)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"sweep", "check", "repair", "export", "audit", "subjects", "verify"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	logFormatFlag := cmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, logFormatFlag)
	assert.Equal(t, "text", logFormatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestSweepCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sweepCmd, _, err := cmd.Find([]string{"sweep"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"subject", "s", ""},
		{"combo-size", "k", "1"},
		{"shrink", "", "false"},
		{"budget", "", "500"},
		{"seeds", "", "100"},
		{"first-seed", "", "1"},
		{"workers", "j", ""},
		{"override", "", "false"},
		{"export", "", "true"},
		{"backend", "", "badger"},
		{"store-dir", "", "data"},
		{"metrics-file", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sweepCmd.Flags().Lookup(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.shorthand, f.Shorthand)
			if tt.name != "workers" {
				assert.Equal(t, tt.def, f.DefValue)
			}
		})
	}
}

func TestInvalidFormats(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"--format", "xml", "subjects"}, `invalid format "xml"`},
		{"log format", []string{"--log-format", "logfmt", "subjects"}, `invalid log format "logfmt"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, toyOptions(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, toyOptions(), "--config", "/nonexistent/mutsweep.yaml", "subjects")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestJSONLogs(t *testing.T) {
	dir := t.TempDir()
	_, stderr, err := execute(t, toyOptions(), storeArgs(dir,
		"--log-format", "json", "sweep", "-s", "toy", "--seeds", "1", "--budget", "5", "--export=false")...)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"sweep started"`)
	assert.Contains(t, stderr, `"run_id":`)
}
