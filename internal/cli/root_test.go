package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "generate", "schema", "chart", "insights", "migrate"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	config := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, "c", config.Shorthand)

	generate, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)
	assert.NotNil(t, generate.Flags().Lookup("strategy"))
	assert.NotNil(t, generate.Flags().Lookup("json"))
	assert.NotNil(t, generate.Flags().Lookup("as-of"))
}

func TestAsOfClock(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 3, 9, 6, 30, 15, 0, time.Local) }

	clock, err := asOfClock("2024/01/15", now)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 15, 6, 30, 15, 0, time.Local).Equal(clock()), clock())

	clock, err = asOfClock("2024-02-01T23:00:00", now)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 2, 1, 6, 30, 15, 0, time.Local).Equal(clock()), clock())

	_, err = asOfClock("yesterday", now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--as-of")
}

func TestGenerateRejectsBadAsOf(t *testing.T) {
	isolate(t)
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"generate", "--as-of", "15.01.2024"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported date format")
}

// isolate keeps the developer's config file and database out of the command tests.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{"MAINTDASH_DATABASE_URL", "DATABASE_URL", "MAINTDASH_LLM_PROVIDER", "MAINTDASH_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestCommandsNeedDatabase(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{{"migrate"}, {"generate"}, {"schema"}, {"chart", "cost"}} {
		cmd := NewRootCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)

		err := cmd.Execute()
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "database URL missing")
	}
}

func TestMissingConfigFile(t *testing.T) {
	isolate(t)
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", "does-not-exist.yaml", "migrate"})
	require.Error(t, cmd.Execute())
}
