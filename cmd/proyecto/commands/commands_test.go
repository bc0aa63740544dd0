package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jesuschaires594-droid/proyecto/internal/domain/entities"
	"github.com/jesuschaires594-droid/proyecto/internal/infrastructure/config"
	"github.com/jesuschaires594-droid/proyecto/internal/infrastructure/logger"
	"github.com/jesuschaires594-droid/proyecto/internal/ports"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestUserCommands(t *testing.T) {
	file := filepath.Join(t.TempDir(), "users.json")

	out, err := execute(t, "", "--file", file, "user", "list")
	require.NoError(t, err)
	assert.Equal(t, "No users.\n", out)

	out, err = execute(t, "", "--file", file, "user", "create", "--id", "1", "--name", "Ana", "--email", "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, "User 'Ana' created.\n", out)

	_, err = execute(t, "", "--file", file, "user", "create", "--id", "1", "--name", "Otra")
	assert.ErrorIs(t, err, entities.ErrDuplicateID)

	out, err = execute(t, "", "--file", file, "user", "update", "--id", "1", "--email", "ana@y.com")
	require.NoError(t, err)
	assert.Equal(t, "User 1 updated.\n", out)

	out, err = execute(t, "", "--file", file, "user", "list")
	require.NoError(t, err)
	assert.Equal(t, "1 | Ana | ana@y.com\n", out)

	_, err = execute(t, "", "--file", file, "user", "delete", "--id", "2")
	assert.ErrorIs(t, err, entities.ErrUserNotFound)

	out, err = execute(t, "", "--file", file, "user", "delete", "--id", "1")
	require.NoError(t, err)
	assert.Equal(t, "User 1 deleted.\n", out)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestUserCreate_RequiresID(t *testing.T) {
	file := filepath.Join(t.TempDir(), "users.json")

	_, err := execute(t, "", "--file", file, "user", "create", "--name", "Ana")
	assert.Error(t, err)
}

func TestUserList_CorruptFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(file, []byte("not json"), 0o644))

	_, err := execute(t, "", "--file", file, "user", "list")
	assert.ErrorIs(t, err, entities.ErrStorageUnavailable)
}

func TestRootRunsMenu(t *testing.T) {
	file := filepath.Join(t.TempDir(), "users.json")

	out, err := execute(t, "1\n4\nLuz\nluz@x.com\n2\n5\n", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "--- CRUD MENU ---")
	assert.Contains(t, out, "User 'Luz' created.")
	assert.Contains(t, out, "4 | Luz | luz@x.com")
	assert.Contains(t, out, "Exiting.")
}

func TestMenuCommand_EmptyInput(t *testing.T) {
	file := filepath.Join(t.TempDir(), "users.json")

	_, err := execute(t, "", "--file", file, "menu")
	require.NoError(t, err)
	assert.FileExists(t, file)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "proyecto v"+Version)
}

func TestMetricsSummaryPrintedWithDefaultLogLevel(t *testing.T) {
	t.Setenv("ENABLE_METRICS", "true")
	file := filepath.Join(t.TempDir(), "users.json")

	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader("1\n1\nAna\nana@x.com\n1\n1\nAna\nana@x.com\n5\n"))
	cmd.SetArgs([]string{"--file", file})

	require.NoError(t, cmd.Execute())

	summary := errOut.String()
	assert.Contains(t, summary, "Operation summary:")
	assert.Contains(t, summary, "create/ok: 1")
	assert.Contains(t, summary, "create/duplicate_id: 1")
	assert.NotContains(t, out.String(), "Operation summary")
}

func TestMetricsSummaryOmittedWhenDisabled(t *testing.T) {
	t.Setenv("ENABLE_METRICS", "false")
	file := filepath.Join(t.TempDir(), "users.json")

	cmd := NewRootCommand()
	errOut := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"--file", file, "user", "list"})

	require.NoError(t, cmd.Execute())
	assert.NotContains(t, errOut.String(), "Operation summary")
}

func TestWriteSummary_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	writeSummary(buf, map[string]float64{})
	assert.Equal(t, "Operation summary:\n  (no operations)\n", buf.String())
}

func TestBuildApp_SessionIDReachesServiceAndRepository(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	cfg := &config.Config{
		Store:   config.StoreConfig{Path: filepath.Join(t.TempDir(), "users.json"), Indent: 4},
		Metrics: config.MetricsConfig{Enabled: true},
	}
	a, err := buildApp(cfg, base.WithSessionID("session-1"))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = a.svc.CreateUser(ctx, ports.CreateUserRequest{ID: 1, Name: "Ana", Email: "ana@x.com"})
	require.NoError(t, err)
	require.NoError(t, a.svc.DeleteUser(ctx, 1))

	components := map[string]bool{}
	entries := logs.All()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		fields := e.ContextMap()
		assert.Equal(t, "session-1", fields["session_id"], e.Message)
		if c, ok := fields["component"].(string); ok {
			components[c] = true
		}
	}
	assert.True(t, components["user_service"])
	assert.True(t, components["user_repository"])
	assert.NotEmpty(t, logs.FilterMessage("User action").All())
}
