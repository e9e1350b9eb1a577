// internal/commands/testcases_list.go
package biasprobe

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mwiater/biasprobe/internal/appconfig"
	"github.com/mwiater/biasprobe/internal/testcases"
	"github.com/mwiater/biasprobe/internal/util"
)

// testcasesCmd groups test-case related CLI commands.
var testcasesCmd = &cobra.Command{
	Use:   "testcases",
	Short: "Group commands for inspecting the test-case catalog",
}

var testcasesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the test cases matching the configured filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTestCases(cmd.OutOrStdout(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(testcasesCmd)
	testcasesCmd.AddCommand(testcasesListCmd)
}

// listTestCases prints the catalog entries matching the configured filters.
func listTestCases(out io.Writer, cfg *appconfig.Config) error {
	registry := testcases.NewRegistry()
	filter := testcases.Filter{}

	if cfg != nil {
		if cfg.TestSuite != "" {
			if err := registry.LoadSuite(cfg.TestSuite); err != nil {
				return fmt.Errorf("load test suite: %w", err)
			}
		}
		filter.Difficulty = cfg.Difficulty
		filter.Category = cfg.Category
		filter.Tags = cfg.Tags
		for _, name := range cfg.BiasTypes {
			bias, err := testcases.ParseBiasType(name)
			if err != nil {
				return err
			}
			filter.BiasTypes = append(filter.BiasTypes, bias)
		}
	}

	cases := registry.Cases(filter)
	fmt.Fprintf(out, "%d test cases:\n\n", len(cases))
	for _, tc := range cases {
		fmt.Fprintf(out, "%-28s %-22s %-12s %s\n", tc.ID, tc.Bias, tc.Difficulty, tc.Category)
		fmt.Fprintf(out, "    %s\n", util.TruncateRunes(tc.PromptTemplate, 100))
	}
	return nil
}
