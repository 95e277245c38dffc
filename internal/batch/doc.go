// Package batch selects the single operation requested on the command line and
// applies it to every discovered repository, streaming each repository's output
// in discovery order.
package batch
