// Package shared declares the contracts repository services depend on so that
// git execution, discovery, and filesystem access can be replaced in tests.
package shared
