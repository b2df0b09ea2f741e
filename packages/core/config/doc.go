// Package config loads httpspec run settings.
//
// Settings come from .httpspec.yaml, .httpspec.yml, httpspec.yaml or
// .httpspec.json in the working directory, or from an explicit path. JSON
// files are read by the same YAML decoder.
package config
