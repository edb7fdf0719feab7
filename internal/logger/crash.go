package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	// CrashLogDir is the crash log directory relative to the backlog directory.
	CrashLogDir = ".crash_logs"

	// MaxCrashLogs is the number of crash logs kept after a write.
	MaxCrashLogs = 10

	maxArgsLen = 500
)

// crashReporter holds what the running command was doing when a panic hit.
type crashReporter struct {
	mu      sync.RWMutex
	fs      afero.Fs
	backlog string
	version string
	command string
	args    string
}

var reporter = &crashReporter{fs: afero.NewOsFs()}

// exit is replaced in tests.
var exit = os.Exit

func (c *crashReporter) set(fn func(*crashReporter)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

// SetFs sets the filesystem crash logs are written to.
func SetFs(fs afero.Fs) { reporter.set(func(c *crashReporter) { c.fs = fs }) }

// SetBasePath sets the backlog directory crash logs live under.
func SetBasePath(path string) { reporter.set(func(c *crashReporter) { c.backlog = path }) }

// SetVersion sets the version recorded in crash logs.
func SetVersion(version string) { reporter.set(func(c *crashReporter) { c.version = version }) }

// SetCommand sets the command path being executed, e.g. "task edit".
func SetCommand(cmd string) { reporter.set(func(c *crashReporter) { c.command = cmd }) }

// SetLastInput records the arguments of the running command.
func SetLastInput(input string) {
	input = strings.TrimSpace(input)
	if len(input) > maxArgsLen {
		input = input[:maxArgsLen] + "... [truncated]"
	}
	reporter.set(func(c *crashReporter) { c.args = input })
}

// CrashLog is one crash report. It is stored as YAML front matter followed
// by markdown sections, like task files.
type CrashLog struct {
	ID         string    `yaml:"id"`
	Timestamp  time.Time `yaml:"timestamp"`
	Version    string    `yaml:"version,omitempty"`
	Command    string    `yaml:"command,omitempty"`
	Args       string    `yaml:"args,omitempty"`
	Backlog    string    `yaml:"backlog"`
	GoVersion  string    `yaml:"go"`
	Platform   string    `yaml:"platform"`
	PanicValue string    `yaml:"-"`
	StackTrace string    `yaml:"-"`
}

// HandlePanic recovers a panic, writes a crash log and exits with status 1.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}
	reportPanic(os.Stderr, r)
	exit(1)
}

func reportPanic(w io.Writer, r any) {
	log := reporter.snapshot(r)
	path, err := reporter.write(log)
	if err != nil {
		fmt.Fprintf(w, "\n[CRASH] could not save crash log: %v\n", err)
		fmt.Fprintf(w, "[CRASH] panic: %v\n%s\n", r, log.StackTrace)
		return
	}
	fmt.Fprintf(w, "\nbacklog hit an unexpected error (report %s).\n", log.ID)
	fmt.Fprintf(w, "The crash log has been saved to:\n  %s\n", path)
	fmt.Fprintln(w, "Run 'backlog doctor --last-crash' to print it.")
}

func (c *crashReporter) snapshot(panicValue any) CrashLog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CrashLog{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Version:    c.version,
		Command:    c.command,
		Args:       c.args,
		Backlog:    c.backlog,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		PanicValue: fmt.Sprint(panicValue),
		StackTrace: string(debug.Stack()),
	}
}

func (c *crashReporter) filesystem() afero.Fs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fs == nil {
		return afero.NewOsFs()
	}
	return c.fs
}

func (c *crashReporter) dir() string {
	c.mu.RLock()
	backlog := c.backlog
	c.mu.RUnlock()
	if backlog == "" {
		backlog = "backlog"
	}
	return filepath.Join(backlog, CrashLogDir)
}

// fileName is crash_<utc timestamp>_<first 8 id chars>.log so names sort by time.
func (l CrashLog) fileName() string {
	short, _, _ := strings.Cut(l.ID, "-")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("crash_%s_%s.log", l.Timestamp.UTC().Format("20060102_150405"), short)
}

// Markdown renders the crash log as front matter plus panic and stack sections.
func (l CrashLog) Markdown() ([]byte, error) {
	meta, err := yaml.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode crash log: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n## Panic\n\n")
	buf.WriteString(l.PanicValue)
	buf.WriteString("\n\n## Stack\n\n```\n")
	buf.WriteString(strings.TrimRight(l.StackTrace, "\n"))
	buf.WriteString("\n```\n")
	return buf.Bytes(), nil
}

// write stores log and returns its path.
func (c *crashReporter) write(log CrashLog) (string, error) {
	fs, dir := c.filesystem(), c.dir()
	content, err := log.Markdown()
	if err != nil {
		return "", err
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}
	path := filepath.Join(dir, log.fileName())
	if err := afero.WriteFile(fs, path, content, 0o644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	if err := pruneCrashLogs(fs, dir, MaxCrashLogs); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] could not prune crash logs: %v\n", err)
	}
	return path, nil
}

func isCrashLog(name string) bool {
	return strings.HasPrefix(name, "crash_") && strings.HasSuffix(name, ".log")
}

// pruneCrashLogs removes all but the newest keep crash logs in dir.
func pruneCrashLogs(fs afero.Fs, dir string, keep int) error {
	names, err := crashLogNames(fs, dir)
	if err != nil {
		return err
	}
	for len(names) > keep {
		if err := fs.Remove(filepath.Join(dir, names[0])); err != nil {
			return fmt.Errorf("remove crash log %s: %w", names[0], err)
		}
		names = names[1:]
	}
	return nil
}

// crashLogNames lists crash log file names, oldest first.
func crashLogNames(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isCrashLog(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// ListCrashLogs returns the paths of stored crash logs, oldest first.
func ListCrashLogs() ([]string, error) {
	dir := reporter.dir()
	names, err := crashLogNames(reporter.filesystem(), dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

// ReadCrashLog reads a crash log file.
func ReadCrashLog(path string) (string, error) {
	content, err := afero.ReadFile(reporter.filesystem(), path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
