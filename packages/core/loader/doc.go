// Package loader builds the TestData handed to a test unit.
//
// Every load starts from the baseline produced by the default-data provider
// and adds one entry per requested data source. A source that cannot be read
// degrades to its declared fallback value; only a failing baseline aborts
// the load.
package loader
