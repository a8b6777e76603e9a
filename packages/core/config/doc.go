// Package config loads the suiterun project file.
//
// The file is YAML (JSON is accepted too) and is discovered from
// ConfigFilenames in the working directory unless a path is given. It holds
// the test registry, the data sources, report locations and run-level
// settings. Relative paths inside it are resolved against the directory the
// file was loaded from.
package config
