// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain points XDG_CONFIG_HOME at an empty directory so a config file on
// the developer machine cannot leak into command tests.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "magicsessions-xdg-")
	if err != nil {
		panic(err)
	}
	_ = os.Setenv("XDG_CONFIG_HOME", dir)

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"serve", "migrate", "sweep", "config"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "separate value",
			args:     []string{"--config", "/path/to/config.yaml", "--help"},
			wantFlag: "/path/to/config.yaml",
		},
		{
			name:     "config flag with equals",
			args:     []string{"--config=/etc/magicsessions.yaml", "--help"},
			wantFlag: "/etc/magicsessions.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile = ""
			t.Cleanup(func() { configFile = "" })

			cmd := NewRootCmd()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestServeCommand_Flags(t *testing.T) {
	cmd := NewServeCmd()

	for _, name := range []string{"listen-addr", "metrics-addr", "database-url", "log-format", "log-level", "sweep-interval"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "serve missing --%s", name)
	}

	addr, err := cmd.Flags().GetString("listen-addr")
	require.NoError(t, err)
	assert.Equal(t, ":8080", addr)

	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", metricsAddr)
}

func TestConfigPath(t *testing.T) {
	t.Cleanup(func() { configFile = "" })

	t.Run("no flag and no default file", func(t *testing.T) {
		configFile = ""
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		assert.Empty(t, configPath())
	})

	t.Run("default file discovered", func(t *testing.T) {
		configFile = ""
		base := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", base)
		want := filepath.Join(base, "magicsessions", "config.yaml")
		require.NoError(t, os.MkdirAll(filepath.Dir(want), 0o700))
		require.NoError(t, os.WriteFile(want, []byte("log:\n  level: debug\n"), 0o600))

		assert.Equal(t, want, configPath())
	})

	t.Run("flag wins", func(t *testing.T) {
		configFile = "/etc/magicsessions.yaml"
		assert.Equal(t, "/etc/magicsessions.yaml", configPath())
	})
}
