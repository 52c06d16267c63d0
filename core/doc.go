// Package core holds the HTTP primitives shared by every package: status
// carrying errors and small response writers.
package core
