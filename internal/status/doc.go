// Package status summarizes the working-tree state of a repository from the
// porcelain output of git status.
//
// Each output line contributes its leading status code to a Tally. Codes
// outside the known set are kept and reported rather than dropped.
package status
