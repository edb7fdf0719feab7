// Package git provides shell-based wrappers for the git CLI.
// It uses os/exec instead of go-git to ensure compatibility with user's
// SSH keys, GPG signing config, and other shell environment settings.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Common errors returned by git operations.
var (
	ErrGitNotInstalled    = errors.New("git is not installed or not in PATH")
	ErrNotGitRepository   = errors.New("not a git repository")
	ErrNoRemoteConfigured = errors.New("no remote configured for this repository")
	ErrNothingToCommit    = errors.New("nothing to commit")
)

// recordSep separates commits in LastModifiedByPath output.
const recordSep = "\x1e"

// Commander is an interface for executing commands.
// This allows mocking in tests.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	RunInDir(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ShellCommander executes real shell commands.
type ShellCommander struct{}

// Run executes a command in the current directory.
func (c *ShellCommander) Run(ctx context.Context, name string, args ...string) (string, error) {
	return c.RunInDir(ctx, "", name, args...)
}

// RunInDir executes a command in the specified directory.
func (c *ShellCommander) RunInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		// Include stderr in error for debugging
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("%w: %s", err, errMsg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Client wraps git CLI operations for one working directory.
type Client struct {
	commander Commander
	workDir   string
}

// NewClient creates a new git client for the given directory.
func NewClient(workDir string) *Client {
	return &Client{
		commander: &ShellCommander{},
		workDir:   workDir,
	}
}

// NewClientWithCommander creates a client with a custom commander (for testing).
func NewClientWithCommander(workDir string, commander Commander) *Client {
	return &Client{
		commander: commander,
		workDir:   workDir,
	}
}

func (c *Client) git(ctx context.Context, args ...string) (string, error) {
	return c.commander.RunInDir(ctx, c.workDir, "git", args...)
}

// IsGitInstalled checks if git binary is available in PATH.
func (c *Client) IsGitInstalled(ctx context.Context) bool {
	_, err := c.commander.Run(ctx, "git", "--version")
	return err == nil
}

// IsRepository checks if the working directory is a git repository.
func (c *Client) IsRepository(ctx context.Context) bool {
	_, err := c.git(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// CurrentBranch returns the name of the current branch.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	output, err := c.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return output, nil
}

// HasRemote checks if a remote is configured.
func (c *Client) HasRemote(ctx context.Context, name string) bool {
	_, err := c.git(ctx, "remote", "get-url", name)
	return err == nil
}

// Fetch updates remote-tracking refs and prunes deleted branches.
func (c *Client) Fetch(ctx context.Context, remote string) error {
	if !c.HasRemote(ctx, remote) {
		return fmt.Errorf("fetch %s: %w", remote, ErrNoRemoteConfigured)
	}
	if _, err := c.git(ctx, "fetch", remote, "--prune"); err != nil {
		return fmt.Errorf("fetch %s: %w", remote, err)
	}
	return nil
}

// RemoteBranches lists remote-tracking branches of remote as <remote>/<name>.
func (c *Client) RemoteBranches(ctx context.Context, remote string) ([]string, error) {
	output, err := c.git(ctx, "branch", "-r", "--format=%(refname:short)")
	if err != nil {
		return nil, fmt.Errorf("list remote branches: %w", err)
	}
	var branches []string
	for _, line := range splitNonEmpty(output) {
		if strings.HasPrefix(line, remote+"/") {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// RecentRemoteBranches lists remote-tracking branches of remote whose tip
// commit is newer than since, newest first.
func (c *Client) RecentRemoteBranches(ctx context.Context, remote string, since time.Time) ([]string, error) {
	output, err := c.git(ctx, "for-each-ref", "--format=%(refname:short) %(committerdate:unix)", "refs/remotes/"+remote)
	if err != nil {
		return nil, fmt.Errorf("list recent remote branches: %w", err)
	}

	type branchTip struct {
		name string
		at   int64
	}
	var tips []branchTip
	for _, line := range splitNonEmpty(output) {
		name, stamp, ok := strings.Cut(line, " ")
		if !ok || !strings.HasPrefix(name, remote+"/") {
			continue
		}
		at, err := strconv.ParseInt(strings.TrimSpace(stamp), 10, 64)
		if err != nil {
			continue
		}
		if at >= since.Unix() {
			tips = append(tips, branchTip{name: name, at: at})
		}
	}
	sort.SliceStable(tips, func(i, j int) bool { return tips[i].at > tips[j].at })

	branches := make([]string, len(tips))
	for i, t := range tips {
		branches[i] = t.name
	}
	return branches, nil
}

// ListFiles lists files under pathPrefix at ref, relative to the repository root.
func (c *Client) ListFiles(ctx context.Context, ref, pathPrefix string) ([]string, error) {
	output, err := c.git(ctx, "-c", "core.quotepath=off", "ls-tree", "-r", "--name-only", ref, "--", pathPrefix)
	if err != nil {
		return nil, fmt.Errorf("ls-tree %s: %w", ref, err)
	}
	return splitNonEmpty(output), nil
}

// LastModifiedByPath maps every file touched under pathPrefix at ref to the
// committer time of the newest commit that touched it.
func (c *Client) LastModifiedByPath(ctx context.Context, ref, pathPrefix string) (map[string]time.Time, error) {
	output, err := c.git(ctx, "-c", "core.quotepath=off", "log", "--format="+recordSep+"%ct", "--name-only", ref, "--", pathPrefix)
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", ref, err)
	}
	return parseLastModified(output), nil
}

// parseLastModified reads git log output, newest commit first. The first
// sighting of a path is its latest modification.
func parseLastModified(output string) map[string]time.Time {
	out := make(map[string]time.Time)
	for _, record := range strings.Split(output, recordSep) {
		lines := splitNonEmpty(record)
		if len(lines) == 0 {
			continue
		}
		secs, err := strconv.ParseInt(lines[0], 10, 64)
		if err != nil {
			continue
		}
		at := time.Unix(secs, 0).UTC()
		for _, path := range lines[1:] {
			if _, seen := out[path]; !seen {
				out[path] = at
			}
		}
	}
	return out
}

// ShowFile returns the content of path at ref.
func (c *Client) ShowFile(ctx context.Context, ref, path string) (string, error) {
	output, err := c.git(ctx, "show", ref+":"+path)
	if err != nil {
		return "", fmt.Errorf("show %s:%s: %w", ref, path, err)
	}
	return output, nil
}

// Add stages files for commit.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	if _, err := c.git(ctx, args...); err != nil {
		return fmt.Errorf("add files: %w", err)
	}
	return nil
}

// Commit creates a commit with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	if _, err := c.git(ctx, "commit", "-m", message); err != nil {
		if strings.Contains(err.Error(), "nothing to commit") {
			return ErrNothingToCommit
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func splitNonEmpty(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
