// Package assertions checks unit outcomes against declared expectations.
//
// An expectation names a subject, an operator and an expected value:
//
//	expect:
//	  - subject: status
//	    op: equals
//	    value: 200
//	  - subject: body.data.id
//	    op: exists
//
// Subjects are resolved by a Source supplied by the unit (an HTTP response,
// query rows, command output). Supported operators: equals, notEquals, >,
// >=, <, <=, contains, notContains, startsWith, endsWith, matches, exists,
// notExists, length, includes, notIncludes, in, notIn, type, schema, each.
package assertions
