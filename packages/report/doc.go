// Package report stores per-test result files and renders them into an HTML
// report.
//
// A run first clears the results directory, then records one
// <uuid>-result.json file per test. GenerateReport reads every result file
// and writes index.html into the report directory; OpenReport hands that
// file to the platform opener.
package report
