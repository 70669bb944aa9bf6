package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/tsrun/internal/executor"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_ReproducesClassicPipeline(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tc := Default()

	// --- Act ---
	compile, err := tc.Compiler.Command("app.ts", "app.js")
	require.NoError(t, err)
	run, err := tc.Runtime.Command("app.ts", "app.js")
	require.NoError(t, err)

	// --- Assert ---
	require.NoError(t, tc.Validate())
	require.Equal(t, ".js", tc.TargetExtension)
	require.Nil(t, tc.Notify)
	if diff := cmp.Diff(executor.Command{Name: "npx", Args: []string{"tsc", "app.ts", "--out", "app.js"}}, compile); diff != "" {
		t.Errorf("compile command mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(executor.Command{Name: "node", Args: []string{"app.js"}}, run); diff != "" {
		t.Errorf("run command mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, DefaultCompileFailure, tc.Compiler.FailureMessage)
	require.Equal(t, DefaultRunFailure, tc.Runtime.FailureMessage)
}

func TestCommand_PathsAreSingleArguments(t *testing.T) {
	t.Parallel()

	tc := Default()

	cmd, err := tc.Compiler.Command("my dir/a;rm -rf.ts", "my dir/a;rm -rf.js")

	require.NoError(t, err)
	require.Equal(t, []string{"tsc", "my dir/a;rm -rf.ts", "--out", "my dir/a;rm -rf.js"}, cmd.Args)
}

func TestLoad_NoPathsReturnsDefault(t *testing.T) {
	t.Parallel()

	tc, err := Load(context.Background())

	require.NoError(t, err)
	require.Equal(t, "npx", tc.Compiler.Program)
	require.Equal(t, "node", tc.Runtime.Program)
}

func TestLoad_OverridesRuntimeOnly(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeFile(t, t.TempDir(), "toolchain.hcl", `
runtime "bun" {
  command = "bun"
  args    = ["run", output]
}
`)

	// --- Act ---
	tc, err := Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "npx", tc.Compiler.Program, "compiler must keep the default")
	require.Equal(t, "bun", tc.Runtime.Program)
	require.Equal(t, "bun", tc.Runtime.Name)
	require.Equal(t, DefaultRunFailure, tc.Runtime.FailureMessage, "failure message is inherited")

	cmd, err := tc.Runtime.Command("x.ts", "x.js")
	require.NoError(t, err)
	require.Equal(t, []string{"run", "x.js"}, cmd.Args)
}

func TestLoad_FullFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeFile(t, t.TempDir(), "toolchain.hcl", `
target_extension = ".mjs"

compiler "esbuild" {
  command         = "esbuild"
  args            = [source, "--outfile=${output}", "--log-level", 3]
  failure_message = "build broke"
}

runtime "deno" {
  command = "deno"
}

notify {
  url                  = "http://localhost:5000/socket.io/"
  event                = "stage"
  timeout              = "250ms"
  insecure_skip_verify = true
}
`)

	// --- Act ---
	tc, err := Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, ".mjs", tc.TargetExtension)
	require.Equal(t, "build broke", tc.Compiler.FailureMessage)

	compile, err := tc.Compiler.Command("a.ts", "a.mjs")
	require.NoError(t, err)
	require.Equal(t, []string{"a.ts", "--outfile=a.mjs", "--log-level", "3"}, compile.Args)

	run, err := tc.Runtime.Command("a.ts", "a.mjs")
	require.NoError(t, err)
	require.Empty(t, run.Args)

	want := &Notify{
		URL:                "http://localhost:5000/socket.io/",
		Namespace:          "/",
		Event:              "stage",
		Timeout:            250 * time.Millisecond,
		InsecureSkipVerify: true,
	}
	if diff := cmp.Diff(want, tc.Notify); diff != "" {
		t.Errorf("notify mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_DirectoryMergesInOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "10-runtime.hcl", `
runtime "node18" {
  command = "node18"
  args    = [output]
}
`)
	writeFile(t, dir, "20-runtime.hcl", `
runtime "node20" {
  command = "node20"
  args    = [output]
}
`)
	writeFile(t, dir, "README.md", "not a toolchain file")

	// --- Act ---
	tc, err := Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "node20", tc.Runtime.Program, "later files override earlier ones")
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "Syntax error",
			content: `compiler "tsc" {`,
			errText: "failed to parse toolchain file",
		},
		{
			name:    "Unknown attribute",
			content: `interpreter = "node"`,
			errText: "failed to decode toolchain file",
		},
		{
			name:    "Missing command",
			content: "runtime \"node\" {\n  args = [output]\n}\n",
			errText: "failed to decode toolchain file",
		},
		{
			name:    "Extension without dot",
			content: `target_extension = "js"`,
			errText: "must start with '.'",
		},
		{
			name:    "Extension with separator",
			content: `target_extension = ".out/js"`,
			errText: "path separator",
		},
		{
			name:    "Empty command",
			content: "runtime \"node\" {\n  command = \" \"\n}\n",
			errText: "command must not be empty",
		},
		{
			name:    "Bad notify timeout",
			content: "notify {\n  url = \"http://localhost:1\"\n  timeout = \"soon\"\n}\n",
			errText: "invalid timeout",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), "toolchain.hcl", tc.content)

			_, err := Load(context.Background(), path)

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"))

	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_DirectoryWithoutHCL(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), t.TempDir())

	require.Error(t, err)
	require.Contains(t, err.Error(), "no .hcl toolchain files")
}

func TestCommand_EvaluationErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    string
		errText string
	}{
		{name: "Unknown variable", args: `[sourcefile]`, errText: "failed to evaluate"},
		{name: "Not a list", args: `{ a = source }`, errText: "must be a list of strings"},
		{name: "Null element", args: `[source, null]`, errText: "args"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), "toolchain.hcl", "compiler \"tsc\" {\n  command = \"tsc\"\n  args = "+tc.args+"\n}\n")
			chain, err := Load(context.Background(), path)
			require.NoError(t, err)

			_, err = chain.Compiler.Command("a.ts", "a.js")

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errText)
		})
	}
}
