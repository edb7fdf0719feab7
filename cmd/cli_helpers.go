package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josephgoksu/backlog/internal/ui"
)

func isJSON() bool {
	return viper.GetBool("json")
}

func isVerbose() bool {
	return viper.GetBool("verbose")
}

func isPlain() bool {
	return viper.GetBool("plain")
}

func isLocalOnly() bool {
	return viper.GetBool("local-only")
}

// interactive is replaced in tests.
var interactive = ui.IsInteractive

func printJSON(cmd *cobra.Command, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}

// renderer returns a renderer writing to the command output. Colors are
// off with --plain or when stdout is not a terminal.
func renderer(cmd *cobra.Command, p *project) *ui.Renderer {
	r := ui.NewRenderer(cmd.OutOrStdout(), isPlain() || !interactive(), p.cfg.Statuses)
	r.DateFormat = p.cfg.DateFormat
	return r
}

// flagString returns a pointer to the flag value when the flag was given.
func flagString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// parseIndices parses "1,3" style criterion indices.
func parseIndices(values []string) ([]int, error) {
	var out []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "#"))
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid criterion index %q", part)
			}
			out = append(out, n)
		}
	}
	return out, nil
}
