/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josephgoksu/backlog/internal/logger"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// version is the application version.
	version = "0.3.0"
)

// ErrNotInitialized is returned when a command needs a backlog project and
// none encloses the working directory.
var ErrNotInitialized = errors.New("not a backlog project (run 'backlog init' first)")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Backlog tracks project tasks as markdown files in your git repository.",
	Long: `Backlog keeps tasks, documents and decisions as markdown files with YAML
frontmatter inside the repository. Task copies on other remote branches are
merged into every listing so the board shows the whole team's progress.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetCommand(cmd.CommandPath())
		logger.SetLastInput(strings.Join(args, " "))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	logger.SetVersion(version)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetVersion returns the application version.
func GetVersion() string {
	return version
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is backlog/config.yml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "print machine readable JSON")
	rootCmd.PersistentFlags().Bool("plain", false, "disable colors and interactive prompts")
	rootCmd.PersistentFlags().Bool("local-only", false, "ignore task copies on remote branches")

	bindPersistentFlags()
}

// bindPersistentFlags binds the global flags to Viper.
func bindPersistentFlags() {
	for _, name := range []string{"config", "verbose", "json", "plain", "local-only"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}
