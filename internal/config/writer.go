package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Keys lists every configuration key in file order.
func Keys() []string {
	return []string{
		KeyProjectName,
		KeyDefaultStatus,
		KeyStatuses,
		KeyLabels,
		KeyMilestones,
		KeyDateFormat,
		KeyAutoCommit,
		KeyRemoteOperations,
		KeyRemoteBranches,
		KeyCheckActiveBranches,
		KeyActiveBranchDays,
		KeyTaskResolutionStrategy,
		KeyZeroPaddedIDs,
		KeyLogLevel,
	}
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(fs afero.Fs, path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Get renders the value of key for display.
func (c Config) Get(key string) (string, error) {
	switch normalizeKey(key) {
	case KeyProjectName:
		return c.ProjectName, nil
	case KeyDefaultStatus:
		return c.DefaultStatus, nil
	case KeyStatuses:
		return strings.Join(c.Statuses, ", "), nil
	case KeyLabels:
		return strings.Join(c.Labels, ", "), nil
	case KeyMilestones:
		return strings.Join(c.Milestones, ", "), nil
	case KeyDateFormat:
		return c.DateFormat, nil
	case KeyAutoCommit:
		return strconv.FormatBool(c.AutoCommit), nil
	case KeyRemoteOperations:
		return strconv.FormatBool(c.RemoteOperations), nil
	case KeyRemoteBranches:
		return strings.Join(c.RemoteBranches, ", "), nil
	case KeyCheckActiveBranches:
		return strconv.FormatBool(c.CheckActiveBranches), nil
	case KeyActiveBranchDays:
		return strconv.Itoa(c.ActiveBranchDays), nil
	case KeyTaskResolutionStrategy:
		return c.TaskResolutionStrategy, nil
	case KeyZeroPaddedIDs:
		return strconv.Itoa(c.ZeroPaddedIDs), nil
	case KeyLogLevel:
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
}

// Set parses value into the field named by key and validates the result.
// On error c is left unchanged.
func (c *Config) Set(key, value string) error {
	next := *c
	value = strings.TrimSpace(value)

	var err error
	switch normalizeKey(key) {
	case KeyProjectName:
		next.ProjectName = value
	case KeyDefaultStatus:
		next.DefaultStatus = value
	case KeyStatuses:
		next.Statuses = splitList(value)
	case KeyLabels:
		next.Labels = splitList(value)
	case KeyMilestones:
		next.Milestones = splitList(value)
	case KeyDateFormat:
		next.DateFormat = value
	case KeyAutoCommit:
		next.AutoCommit, err = strconv.ParseBool(value)
	case KeyRemoteOperations:
		next.RemoteOperations, err = strconv.ParseBool(value)
	case KeyRemoteBranches:
		next.RemoteBranches = splitList(value)
	case KeyCheckActiveBranches:
		next.CheckActiveBranches, err = strconv.ParseBool(value)
	case KeyActiveBranchDays:
		next.ActiveBranchDays, err = strconv.Atoi(value)
	case KeyTaskResolutionStrategy:
		next.TaskResolutionStrategy = strings.ToLower(value)
	case KeyZeroPaddedIDs:
		next.ZeroPaddedIDs, err = strconv.Atoi(value)
	case KeyLogLevel:
		next.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// normalizeKey accepts camelCase and kebab-case spellings.
func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '-':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
