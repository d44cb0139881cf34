package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/app"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/logger"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, ".env", o.EnvFile)
	assert.Empty(t, o.Datastore)
	assert.Equal(t, "info", o.LogLevel)
	assert.Equal(t, logger.LevelInfo, o.level)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"defaults", Options{}, ""},
		{"json output", Options{Output: "json"}, ""},
		{"unknown output", Options{Output: "xml"}, "output format must be one of"},
		{"negative port", Options{Port: -1}, "out of range"},
		{"port too large", Options{Port: 70000}, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate(nil)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func newBoundCommand(o *Options) *cobra.Command {
	cmd := &cobra.Command{Use: "dsusage"}
	o.Bind(cmd.Flags())
	return cmd
}

func TestOverrides_InsecureOnlyWhenFlagGiven(t *testing.T) {
	o := DefaultOptions()
	cmd := newBoundCommand(o)
	require.NoError(t, cmd.ParseFlags([]string{"--datastore", "datastore1", "-s", "esxi.local", "-o", "8443", "-u", "root", "-p", "secret"}))
	require.NoError(t, o.Complete(cmd, nil))

	ov := o.overrides()
	assert.Equal(t, "esxi.local", ov.Server)
	assert.Equal(t, 8443, ov.Port)
	assert.Equal(t, "root", ov.Username)
	assert.Equal(t, "secret", ov.Password)
	assert.Nil(t, ov.Insecure)
	assert.Equal(t, "datastore1", o.Datastore)
}

func TestOverrides_InsecureFlag(t *testing.T) {
	o := DefaultOptions()
	cmd := newBoundCommand(o)
	require.NoError(t, cmd.ParseFlags([]string{"--datastore", "datastore1", "--disable-ssl-verification"}))
	require.NoError(t, o.Complete(cmd, nil))

	ov := o.overrides()
	require.NotNil(t, ov.Insecure)
	assert.True(t, *ov.Insecure)
}

func TestComplete_LogLevel(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    logger.Level
		wantErr string
	}{
		{"default", nil, logger.LevelInfo, ""},
		{"warning", []string{"--log-level", "warning"}, logger.LevelWarn, ""},
		{"error upper case", []string{"--log-level", "ERROR"}, logger.LevelError, ""},
		{"verbose wins", []string{"--log-level", "error", "-v"}, logger.LevelDebug, ""},
		{"unknown", []string{"--log-level", "loud"}, logger.LevelInfo, "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			cmd := newBoundCommand(o)
			require.NoError(t, cmd.ParseFlags(tt.args))

			err := o.Complete(cmd, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.level)
		})
	}
}

func TestRun_EmptyDatastoreCheckedBeforeSettings(t *testing.T) {
	t.Setenv("ESXI_PORT", "https")

	var out bytes.Buffer
	o := DefaultOptions()
	o.out = &out
	o.EnvFile = ""
	o.ConfigFile = "/nonexistent/dsusage.toml"

	err := o.Run(context.Background())
	require.Error(t, err)
	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, app.ExitFailure, exit.code)
	assert.Equal(t, "Datastore name is wrong\n", out.String())
}

func TestRun_InvalidPortFailsWithoutReport(t *testing.T) {
	t.Setenv("ESXI_PORT", "https")

	var out bytes.Buffer
	o := DefaultOptions()
	o.out = &out
	o.EnvFile = ""
	o.Datastore = "datastore1"

	err := o.Run(context.Background())
	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, app.ExitFailure, exit.code)
	assert.Empty(t, out.String())
}

func TestCommand_MissingDatastoreFlag(t *testing.T) {
	cmd := NewDatastoreUsageCommand()
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "datastore" not set`)
}

func TestCommand_EmptyDatastoreFails(t *testing.T) {
	t.Setenv("ESXI_URL", "")
	t.Setenv("ESXI_USERNAME", "")
	t.Setenv("ESXI_PASSWORD", "")
	t.Setenv("ESXI_PORT", "")

	cmd := NewDatastoreUsageCommand()
	cmd.SetArgs([]string{"--datastore", "", "--env-file", ""})

	err := cmd.Execute()
	require.Error(t, err)
	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, app.ExitFailure, exit.code)
}

func TestCommand_UnknownOutput(t *testing.T) {
	cmd := NewDatastoreUsageCommand()
	cmd.SetArgs([]string{"--datastore", "datastore1", "--output", "xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output format must be one of")
}

func TestExitError(t *testing.T) {
	err := &exitError{code: 1}
	assert.Equal(t, "exit status 1", err.Error())
}
