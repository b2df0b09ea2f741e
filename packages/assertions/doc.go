// Package assertions defines response expectations and evaluates them.
//
// Each expectation is a tagged value rather than an opaque closure, so a spec
// can be inspected before it runs. Supported kinds:
//   - Status code equality (expect status 200)
//   - Header presence and exact value lists
//   - Content-Type equality, parameters included
//   - Decoded body checks (decode into a Go type, then inspect)
//   - Raw response callbacks
//   - JSONPath queries (body.data.id equals 42)
//   - JSON Schema validation
//   - Body substring checks
//
// Evaluation never stops at the first failure: every expectation produces a
// Result.
package assertions
