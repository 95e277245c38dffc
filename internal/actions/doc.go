// Package actions runs the per-repository git operations: branch checkout,
// staging, committing, pushing, pulling, fetching, and remote updates, plus the
// composite flow that carries local work to the remote on a per-machine branch.
package actions
