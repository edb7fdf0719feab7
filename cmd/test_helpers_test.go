package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/backlog/internal/git"
	"github.com/josephgoksu/backlog/internal/logger"
	"github.com/josephgoksu/backlog/models"
)

const testProjectDir = "/work/demo"

// fakeGit answers git invocations without a real repository. Only
// "status" reports changes; "remote get-url" fails so remote loading stays
// off.
type fakeGit struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeGit) Run(ctx context.Context, name string, args ...string) (string, error) {
	return f.RunInDir(ctx, "", name, args...)
}

func (f *fakeGit) RunInDir(_ context.Context, _ string, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	if len(args) == 0 {
		return "", nil
	}
	switch args[0] {
	case "status":
		return " M backlog/tasks/task-1.md", nil
	case "remote":
		return "", errors.New("exit status 2: error: No such remote 'origin'")
	case "rev-parse":
		return "main", nil
	}
	return "", nil
}

func (f *fakeGit) commits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, "git commit -m ") {
			out = append(out, strings.TrimPrefix(c, "git commit -m "))
		}
	}
	return out
}

// setupCmdTest points the commands at an in-memory project directory.
func setupCmdTest(t *testing.T) (afero.Fs, *fakeGit) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(testProjectDir, 0o755))
	fg := &fakeGit{}

	oldFs, oldWd, oldInteractive, oldPick, oldGit := appFs, getwd, interactive, pickTask, newGitClient
	appFs = fs
	getwd = func() (string, error) { return testProjectDir, nil }
	interactive = func() bool { return false }
	pickTask = func(string, []models.Task) (string, error) {
		t.Fatal("picker must not open")
		return "", nil
	}
	newGitClient = func(dir string) *git.Client { return git.NewClientWithCommander(dir, fg) }

	t.Cleanup(func() {
		appFs, getwd, interactive, pickTask, newGitClient = oldFs, oldWd, oldInteractive, oldPick, oldGit
		logger.SetFs(afero.NewOsFs())
		logger.SetBasePath("")
		viper.Reset()
	})
	return fs, fg
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	bindPersistentFlags()
	resetFlags(rootCmd)

	b := new(bytes.Buffer)
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return b.String(), err
}

// mustExecute is execute failing the test on error.
func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, out)
	return out
}

// resetFlags restores every flag to its default. Cobra keeps parsed
// values between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
