// Package units defines executable test units and the registry that
// instantiates them by name.
//
// A unit is created per test attempt from the entry's params by a Factory,
// then run once with that attempt's TestData. Built-in units:
//
//   - shell: runs a command through sh -c
//   - http:  sends a request and checks the response
//   - sql:   runs a query and checks the returned rows
//
// String params may contain {{...}} templates resolved against the TestData
// at run time, e.g. {{userCredentials.email}} or {{users.0.name}}.
package units
