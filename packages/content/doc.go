// Package content encodes request bodies and decodes response bodies by
// media type.
//
// Supported codecs:
//   - JSON (application/json)
//   - YAML (application/yaml, application/x-yaml, text/yaml)
//   - Form (application/x-www-form-urlencoded)
package content
