// Package output writes machine-readable run results.
//
// Supported output formats:
//   - JSON: summary plus one entry per test
//   - JUnit: JUnit XML for CI integration
//   - TAP: Test Anything Protocol version 13
//
// Human-readable progress is the logger's job; formatters here only render
// the final RunResult.
package output
