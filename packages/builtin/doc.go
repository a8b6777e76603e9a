// Package builtin provides the template functions available to default data
// and unit parameters.
//
// Available functions:
//   - uuid(): random UUID v4
//   - now(), date(layout), timestamp(), timestampMs()
//   - random(min, max): random integer in range
//   - randomString(length), randomAlphanumeric(length)
//   - randomEmail(domain?): throwaway address
//   - randomPassword(length): password with upper, lower, digit and symbol
//   - randomName(): "First Last" pair
//   - base64(value), sha256(value), urlEncode(value)
//   - env(name, default?): environment variable value
//
// Functions are invoked with the {{name(args)}} syntax.
package builtin
