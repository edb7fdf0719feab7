// Package config loads and saves the project configuration
// (backlog/config.yml).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/josephgoksu/backlog/models"
)

const (
	// FileName is the configuration file inside the backlog directory.
	FileName = "config.yml"

	// EnvPrefix prefixes environment overrides, e.g. BACKLOG_AUTO_COMMIT.
	EnvPrefix = "BACKLOG"
)

// Configuration keys.
const (
	KeyProjectName            = "project_name"
	KeyDefaultStatus          = "default_status"
	KeyStatuses               = "statuses"
	KeyLabels                 = "labels"
	KeyMilestones             = "milestones"
	KeyDateFormat             = "date_format"
	KeyAutoCommit             = "auto_commit"
	KeyRemoteOperations       = "remote_operations"
	KeyRemoteBranches         = "remote_branches"
	KeyCheckActiveBranches    = "check_active_branches"
	KeyActiveBranchDays       = "active_branch_days"
	KeyTaskResolutionStrategy = "task_resolution_strategy"
	KeyZeroPaddedIDs          = "zero_padded_ids"
	KeyLogLevel               = "log_level"
)

// Config is the project configuration.
type Config struct {
	ProjectName            string   `mapstructure:"project_name" yaml:"project_name" json:"projectName" validate:"required"`
	DefaultStatus          string   `mapstructure:"default_status" yaml:"default_status" json:"defaultStatus" validate:"required"`
	Statuses               []string `mapstructure:"statuses" yaml:"statuses" json:"statuses" validate:"min=1,dive,required"`
	Labels                 []string `mapstructure:"labels" yaml:"labels" json:"labels"`
	Milestones             []string `mapstructure:"milestones" yaml:"milestones" json:"milestones"`
	DateFormat             string   `mapstructure:"date_format" yaml:"date_format" json:"dateFormat" validate:"required"`
	AutoCommit             bool     `mapstructure:"auto_commit" yaml:"auto_commit" json:"autoCommit"`
	RemoteOperations       bool     `mapstructure:"remote_operations" yaml:"remote_operations" json:"remoteOperations"`
	RemoteBranches         []string `mapstructure:"remote_branches" yaml:"remote_branches,omitempty" json:"remoteBranches,omitempty"`
	CheckActiveBranches    bool     `mapstructure:"check_active_branches" yaml:"check_active_branches" json:"checkActiveBranches"`
	ActiveBranchDays       int      `mapstructure:"active_branch_days" yaml:"active_branch_days" json:"activeBranchDays" validate:"gte=1"`
	TaskResolutionStrategy string   `mapstructure:"task_resolution_strategy" yaml:"task_resolution_strategy" json:"taskResolutionStrategy" validate:"oneof=most_recent most_progressed"`
	ZeroPaddedIDs          int      `mapstructure:"zero_padded_ids" yaml:"zero_padded_ids,omitempty" json:"zeroPaddedIds,omitempty" validate:"gte=0,lte=10"`
	LogLevel               string   `mapstructure:"log_level" yaml:"log_level,omitempty" json:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn error"`
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Default returns the configuration used for keys that are not set.
func Default() Config {
	return Config{
		ProjectName:            "backlog",
		DefaultStatus:          models.StatusToDo,
		Statuses:               append([]string(nil), models.DefaultStatuses...),
		Labels:                 []string{},
		Milestones:             []string{},
		DateFormat:             "2006-01-02",
		AutoCommit:             false,
		RemoteOperations:       true,
		CheckActiveBranches:    true,
		ActiveBranchDays:       30,
		TaskResolutionStrategy: "most_recent",
		LogLevel:               "warn",
	}
}

// Load reads the configuration from v, falling back to Default for each
// key that is not set, and validates the result.
func Load(v *viper.Viper) (Config, error) {
	d := Default()
	cfg := Config{
		ProjectName:            getStringWithDefault(v, KeyProjectName, d.ProjectName),
		DefaultStatus:          getStringWithDefault(v, KeyDefaultStatus, d.DefaultStatus),
		Statuses:               getStringSliceWithDefault(v, KeyStatuses, d.Statuses),
		Labels:                 getStringSliceWithDefault(v, KeyLabels, d.Labels),
		Milestones:             getStringSliceWithDefault(v, KeyMilestones, d.Milestones),
		DateFormat:             getStringWithDefault(v, KeyDateFormat, d.DateFormat),
		AutoCommit:             getBoolWithDefault(v, KeyAutoCommit, d.AutoCommit),
		RemoteOperations:       getBoolWithDefault(v, KeyRemoteOperations, d.RemoteOperations),
		RemoteBranches:         getStringSliceWithDefault(v, KeyRemoteBranches, d.RemoteBranches),
		CheckActiveBranches:    getBoolWithDefault(v, KeyCheckActiveBranches, d.CheckActiveBranches),
		ActiveBranchDays:       getIntWithDefault(v, KeyActiveBranchDays, d.ActiveBranchDays),
		TaskResolutionStrategy: strings.ToLower(getStringWithDefault(v, KeyTaskResolutionStrategy, d.TaskResolutionStrategy)),
		ZeroPaddedIDs:          getIntWithDefault(v, KeyZeroPaddedIDs, d.ZeroPaddedIDs),
		LogLevel:               strings.ToLower(getStringWithDefault(v, KeyLogLevel, d.LogLevel)),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and that the default status is one of
// the configured statuses.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", e.Field(), e.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return err
	}
	if !models.ValidStatus(c.DefaultStatus, c.Statuses) {
		return fmt.Errorf("%w: default_status %q is not one of %s", ErrInvalidConfig, c.DefaultStatus, strings.Join(c.Statuses, ", "))
	}
	return nil
}

// DoneStatus is the last configured status.
func (c Config) DoneStatus() string {
	if len(c.Statuses) == 0 {
		return models.StatusDone
	}
	return c.Statuses[len(c.Statuses)-1]
}

func getIntWithDefault(v *viper.Viper, key string, defaultVal int) int {
	if v.IsSet(key) {
		return v.GetInt(key)
	}
	return defaultVal
}

func getBoolWithDefault(v *viper.Viper, key string, defaultVal bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return defaultVal
}

func getStringWithDefault(v *viper.Viper, key string, defaultVal string) string {
	if v.IsSet(key) {
		if s := strings.TrimSpace(v.GetString(key)); s != "" {
			return s
		}
	}
	return defaultVal
}

// getStringSliceWithDefault accepts a YAML list or a comma separated
// string (as environment variables provide).
func getStringSliceWithDefault(v *viper.Viper, key string, defaultVal []string) []string {
	if !v.IsSet(key) {
		return defaultVal
	}
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}
