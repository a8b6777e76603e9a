// Package logger provides the run log used across suiterun.
//
// Messages carry one of four levels: info, warn, error and success.
// The console format colors the level column; the JSON format emits
// one zerolog event per line for CI log collectors.
package logger
