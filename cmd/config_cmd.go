/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josephgoksu/backlog/internal/config"
	"github.com/josephgoksu/backlog/internal/git"
	"github.com/josephgoksu/backlog/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change backlog/config.yml",
	Long: `Show and change the project configuration. Values can be overridden per
invocation with BACKLOG_<KEY> environment variables, e.g.
BACKLOG_AUTO_COMMIT=true or BACKLOG_REMOTE_OPERATIONS=false.`,
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show every configuration value",
	Args:    cobra.NoArgs,
	RunE:    runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value",
	Long: `Change one configuration value and write backlog/config.yml. Lists take a
comma separated value: backlog config set statuses "Todo,Doing,Review,Done"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
}

func configPath(p *project) string {
	if path := viper.GetString("config"); path != "" {
		return path
	}
	return p.paths.ConfigPath()
}

func runConfigList(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(cmd, p.cfg)
	}
	table := ui.NewTable(isPlain() || !interactive(), 0, "KEY", "VALUE")
	for _, key := range config.Keys() {
		value, _ := p.cfg.Get(key)
		table.AddRow(key, value)
	}
	fmt.Fprint(cmd.OutOrStdout(), table.Render())
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	value, err := p.cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd.Context())
	if err != nil {
		return err
	}
	if err := p.cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	path := configPath(p)
	if err := config.Save(appFs, path, p.cfg); err != nil {
		return err
	}
	p.commit(cmd.Context(), git.ActionUpdate, "config", "", path)

	value, _ := p.cfg.Get(args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], value)
	return nil
}
