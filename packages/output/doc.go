// Package output renders suite results.
//
// Supported formats:
//   - console: colored terminal output
//   - json: machine-readable summary
//   - junit: JUnit XML for CI
//   - tap: Test Anything Protocol
//
// Call Flush once after every file has been formatted. Console prints as it
// goes; the other formats write their document on Flush.
package output
