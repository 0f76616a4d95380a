// package tasks implements the remote mutation orchestrator and the job
// controller.
//
// The Orchestrator performs search, star, and unstar operations against one
// track, choosing between the request and bridge backends and enforcing the
// read-before-toggle invariant. The Controller runs batches of those
// operations as a single background job with progress reporting and
// cooperative cancellation at track boundaries.
package tasks
