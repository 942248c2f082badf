// Package dag resolves which registered tasks a run executes, and in what
// order.
//
// A Graph is an arena of nodes keyed by lower-cased task name. Edges are
// kept as the dependency names the tasks declared and are only looked up
// during Resolve, which is where unknown names and cycles are reported.
// Traversal uses an explicit stack, so deep dependency chains cannot exhaust
// the goroutine stack.
//
// The output order is topological. Among tasks whose dependencies are all
// satisfied, the one registered first goes first, which keeps plans stable
// from run to run.
package dag
