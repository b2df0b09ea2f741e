// Package cmd implements the httpspec CLI commands using Cobra.
//
// Available commands:
//   - run: Execute suite files against a running service
//   - validate: Check suite files without executing them
//   - list: Display the specs defined in suite files
//   - init: Create a config file and an example suite
//   - version: Show version information
package cmd
