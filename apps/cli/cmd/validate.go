package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/httpspec/packages/suite"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>",
	Short: "Validate suite files without executing them",
	Long: `Parse suite files and report every structural problem, such as missing
paths, unknown methods or conflicting bodies.

Examples:
  httpspec validate users.spec.yaml
  httpspec validate ./specs/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return exitError(ExitUsageError, err)
	}
	if len(files) == 0 {
		return exitError(ExitUsageError, fmt.Errorf("no suite files found"))
	}

	invalid := 0
	for _, file := range files {
		f, err := suite.ParseFile(file)
		if err == nil {
			err = f.Validate()
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			invalid++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
	}

	if invalid > 0 {
		return exitError(ExitParseError, fmt.Errorf("validation failed: %d of %d files invalid", invalid, len(files)))
	}
	return nil
}
