// Package runner is the execution engine.
//
// A run resolves the requested test names into a dependency-respecting
// order, then executes each test strictly in sequence: load its data,
// instantiate its unit, await the result and classify it. A failing test
// never stops the batch; the returned RunResult always satisfies
// Passed + Failed == Total.
//
// Optional run-level setup is supported through Config: services to wait
// for and shell hooks to run before the first and after the last test.
package runner
