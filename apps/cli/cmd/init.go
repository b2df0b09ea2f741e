package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/httpspec/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new httpspec project",
	Long: `Initialize a new httpspec project in the current directory.

This creates:
  - .httpspec.yaml      - Configuration file
  - example.spec.yaml   - Example suite

Examples:
  httpspec init
  httpspec init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleSuite = `name: example
baseUrl: http://localhost:3000
headers:
  User-Agent: httpspec/1.0

specs:
  - name: health
    path: /health
    expect:
      status: 200

  - name: createResource
    method: POST
    path: /resources
    body:
      name: Test Resource
      description: Created by httpspec
    capture:
      resourceId: id
    expect:
      status: 201
      contentType: application/json; charset=utf-8
      exists: [id]
      json:
        name: Test Resource

  - name: getResource
    path: /resources/{{resourceId}}
    expect:
      status: 200
      json:
        id: "{{resourceId}}"
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	exampleFile := filepath.Join(cwd, "example.spec.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return exitError(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://localhost:3000"
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleSuite), 0o644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhttpspec project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'httpspec run example.spec.yaml' to execute the example suite.\n")
	return nil
}
