package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/tsrun/internal/runner"
	"github.com/vk/tsrun/internal/testutil"
)

// setupApp creates an app with a recording executor and captured logs.
func setupApp(t *testing.T, cfg Config) (*App, *testutil.RecordingExecutor, *testutil.SafeBuffer) {
	t.Helper()

	conf, err := NewConfig(cfg)
	require.NoError(t, err)
	conf.LogLevel = "debug"

	logs := &testutil.SafeBuffer{}
	exec := testutil.NewRecordingExecutor()
	a, err := NewApp(context.Background(), logs, conf, exec)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Close()
		if os.Getenv("TSRUN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, exec, logs
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{})
	require.NoError(t, err, "an empty source path is still a path")
	require.Empty(t, cfg.SourcePath)

	_, err = NewConfig(Config{SourcePath: "a.ts", Timeout: -1})
	require.Error(t, err)

	cfg, err = NewConfig(Config{SourcePath: "a.ts"})
	require.NoError(t, err)
	require.Equal(t, "a.ts", cfg.SourcePath)
}

func TestApp_RunSuccess(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, exec, logs := setupApp(t, Config{SourcePath: "app.ts"})

	// --- Act ---
	res, err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, runner.StageDone, res.Stage)
	require.Equal(t, 1, exec.Calls("npx"))
	require.Equal(t, 1, exec.Calls("node"))
	require.Contains(t, logs.String(), "Pipeline finished.")
}

func TestApp_CompileFailure(t *testing.T) {
	t.Parallel()

	a, exec, _ := setupApp(t, Config{SourcePath: "app.ts"})
	exec.ExitWith("npx", 1)

	_, err := a.Run(context.Background())

	require.True(t, runner.IsCompileError(err))
	require.Equal(t, 0, exec.Calls("node"))
}

func TestApp_UsesToolchainFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "toolchain.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
target_extension = ".cjs"

runtime "bun" {
  command = "bun"
  args    = [output]
}
`), 0o644))
	a, exec, _ := setupApp(t, Config{SourcePath: "src/app.ts", ToolchainPath: path})

	// --- Act ---
	res, err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "src/app.cjs", res.Output)
	require.Equal(t, ".cjs", a.Toolchain().TargetExtension)
	require.Equal(t, []string{"src/app.cjs"}, exec.Commands()[1].Args)
	require.Equal(t, "bun", exec.Commands()[1].Name)
}

func TestNewApp_BadToolchain(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(Config{SourcePath: "a.ts", ToolchainPath: filepath.Join(t.TempDir(), "missing.hcl")})
	require.NoError(t, err)

	_, err = NewApp(context.Background(), &testutil.SafeBuffer{}, cfg, nil)

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load toolchain")
}

func TestNewApp_DryRunPrintsCommands(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cfg, err := NewConfig(Config{SourcePath: "app.ts", DryRun: true})
	require.NoError(t, err)
	out := &testutil.SafeBuffer{}

	// --- Act ---
	a, err := NewApp(context.Background(), out, cfg, nil)
	require.NoError(t, err)
	_, err = a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "+ npx tsc app.ts --out app.js\n")
	require.Contains(t, out.String(), "+ node app.js\n")
}

func TestNewApp_UnreachableNotifierFallsBack(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "toolchain.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
notify {
  url     = "http://127.0.0.1:1/socket.io/"
  timeout = "200ms"
}
`), 0o644))

	// --- Act ---
	a, exec, logs := setupApp(t, Config{SourcePath: "app.ts", ToolchainPath: path})
	_, err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err, "a notifier failure must not fail the run")
	require.Equal(t, 2, len(exec.Commands()))
	require.Contains(t, logs.String(), "Stage events disabled.")
}

func TestApp_PublishesStageEventsBeforeClose(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	srv := testutil.NewSocketIOServer(t, "pipeline-stage")
	path := filepath.Join(t.TempDir(), "toolchain.hcl")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`
notify {
  url     = %q
  timeout = "5s"
}
`, srv.URL)), 0o644))

	conf, err := NewConfig(Config{SourcePath: "app.ts", ToolchainPath: path})
	require.NoError(t, err)
	exec := testutil.NewRecordingExecutor().ExitWith("node", 1)
	a, err := NewApp(context.Background(), &testutil.SafeBuffer{}, conf, exec)
	require.NoError(t, err)

	// --- Act ---
	_, runErr := a.Run(context.Background())
	require.NoError(t, a.Close())

	// --- Assert ---
	require.True(t, runner.IsRunError(runErr))
	payloads := srv.Payloads()
	require.Len(t, payloads, 2, "every stage event must reach the server before Close returns")
	require.Equal(t, "compiling", payloads[0]["stage"])
	require.Equal(t, "running", payloads[1]["stage"])
	require.Equal(t, false, payloads[1]["succeeded"])
}

func TestNewLogger_Formats(t *testing.T) {
	t.Parallel()

	buf := &testutil.SafeBuffer{}
	newLogger("info", "json", buf).Info("hello", "k", "v")
	require.Contains(t, buf.String(), `"msg":"hello"`)

	buf = &testutil.SafeBuffer{}
	newLogger("bogus", "text", buf).Info("hidden")
	require.Empty(t, buf.String(), "unknown levels fall back to warn")
}
