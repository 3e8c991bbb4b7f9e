// Package utils provides input validation shared by the guard, the message
// router and the HTTP surface: URL acceptance rules, string limits and JSON
// payload size checks.
package utils
