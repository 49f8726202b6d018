package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	once = false
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		once = false
		rootCmd.SetArgs(nil)
	})
	return rootCmd.Execute()
}

func TestOnceFlag(t *testing.T) {
	flag := rootCmd.Flags().Lookup("once")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestSinglePass(t *testing.T) {
	t.Setenv("AGORA_DATABASE_DRIVER", "memory")
	t.Setenv("AGORA_TELEMETRY_ENABLED", "false")

	require.NoError(t, execute(t, "--once"))
	assert.True(t, once)
}

func TestFailuresReturnErrors(t *testing.T) {
	t.Setenv("AGORA_TELEMETRY_ENABLED", "false")

	tests := []struct {
		name   string
		driver string
		args   []string
	}{
		{"bad config", "sqlite", []string{"--once"}},
		{"positional args", "memory", []string{"extra"}},
		{"unknown flag", "memory", []string{"--twice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AGORA_DATABASE_DRIVER", tt.driver)
			assert.Error(t, execute(t, tt.args...))
		})
	}
}
