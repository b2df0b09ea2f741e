package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/httpspec/packages/suite"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>",
	Short: "List the specs in suite files",
	Long: `List the specs defined in suite files.

Examples:
  httpspec list users.spec.yaml
  httpspec list ./specs/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return exitError(ExitUsageError, err)
	}
	if len(files) == 0 {
		return exitError(ExitUsageError, fmt.Errorf("no suite files found"))
	}

	for _, file := range files {
		f, err := suite.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", file)
		for _, c := range f.Specs {
			if c == nil {
				continue
			}
			method := c.Method
			if method == "" {
				method = "GET"
			}
			line := fmt.Sprintf("  - %s %s", method, c.Path)
			if c.Name != "" {
				line = fmt.Sprintf("  - %s (%s %s)", c.Name, method, c.Path)
			}
			if c.Skip != "" {
				line += " [skip: " + c.Skip + "]"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}

	return nil
}
