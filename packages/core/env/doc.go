// Package env loads .env files and system environment variables and resolves
// {{...}} templates against test data.
//
// Template expressions:
//   - {{name}} or {{name.path.0.field}}: value from the variables, walking
//     nested maps and slices
//   - {{$NAME}}: system environment variable
//   - {{fn(args)}}: builtin function call
package env
