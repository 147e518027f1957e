// Package dag holds the dependency graph of a job and the worker pool that
// executes one task per node once all of the node's dependencies finished.
//
// The graph is concurrency-safe and knows nothing about what its nodes do.
// The Pool implements Runner: it schedules root nodes first, unlocks
// dependents as their dependency counts reach zero, cancels the run on the
// first failure and skips everything downstream of a failed node.
package dag
