// Package resolver expands a requested set of test names into an execution
// order in which every prerequisite runs before the tests depending on it.
//
// Each test appears at most once in the order. Requested names keep the
// caller's order; prerequisites follow the order they are declared in.
// A prerequisite chain that loops back on itself is rejected with
// ErrCircularDependency.
package resolver
