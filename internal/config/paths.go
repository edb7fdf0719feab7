package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// ErrNoProjectFound is returned when no backlog directory or git
// repository encloses the start path.
var ErrNoProjectFound = errors.New("no project root found")

// Project describes where a backlog project lives.
type Project struct {
	// Root is the directory containing the backlog directory (or the git
	// root when none exists yet).
	Root string
	// BacklogDir is Root joined with dirName.
	BacklogDir string
	// Initialized reports whether BacklogDir exists.
	Initialized bool
	// GitRoot is the nearest enclosing directory holding .git, if any.
	GitRoot string
}

// ConfigPath is the location of the project configuration file.
func (p Project) ConfigPath() string {
	return filepath.Join(p.BacklogDir, FileName)
}

// FindProject walks up from start looking for dirName (usually "backlog").
// An existing backlog directory wins; otherwise the nearest git root is
// used; otherwise ErrNoProjectFound.
func FindProject(fs afero.Fs, start, dirName string) (Project, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return Project{}, err
	}

	var gitRoot string
	for dir := abs; ; dir = filepath.Dir(dir) {
		if gitRoot == "" && exists(fs, filepath.Join(dir, ".git")) {
			gitRoot = dir
		}
		if isDir(fs, filepath.Join(dir, dirName)) {
			if gitRoot == "" {
				gitRoot = findGitRoot(fs, dir)
			}
			return Project{
				Root:        dir,
				BacklogDir:  filepath.Join(dir, dirName),
				Initialized: true,
				GitRoot:     gitRoot,
			}, nil
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	if gitRoot == "" {
		return Project{}, fmt.Errorf("%s: %w", abs, ErrNoProjectFound)
	}
	return Project{
		Root:       gitRoot,
		BacklogDir: filepath.Join(gitRoot, dirName),
		GitRoot:    gitRoot,
	}, nil
}

func findGitRoot(fs afero.Fs, from string) string {
	for dir := from; ; dir = filepath.Dir(dir) {
		if exists(fs, filepath.Join(dir, ".git")) {
			return dir
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

func exists(fs afero.Fs, path string) bool {
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}

func isDir(fs afero.Fs, path string) bool {
	ok, err := afero.DirExists(fs, path)
	return err == nil && ok
}

// NewViper returns a viper instance reading path (or the default config
// file of backlogDir when path is empty) plus BACKLOG_* environment
// overrides. A missing default file is not an error; a missing explicit
// file is.
func NewViper(fs afero.Fs, backlogDir, path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(backlogDir, FileName)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.Is(err, iofs.ErrNotExist) || errors.As(err, &notFound)
		if missing && !explicit {
			slog.Debug("no config file, using defaults", "path", path)
			return v, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	slog.Debug("using config file", "path", v.ConfigFileUsed())
	return v, nil
}
