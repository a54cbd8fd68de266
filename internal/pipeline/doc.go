// Package pipeline runs scoring jobs through a sequence of steps.
//
// A scoring run loads a scan and its evidence from the store, runs the
// scoring engine, and persists the result. Each stage is a Step that
// receives the Job and fills in its part.
//
// Design decision: We keep the pipeline pattern instead of direct function
// calls because:
// 1. It gives every stage the same error handling and logging
// 2. Steps can be swapped in tests without a database
// 3. It supports cancellation via context between stages
//
// BatchProcessor rescoring many scans at once bounds its concurrency with
// errgroup. The scoring engine itself is pure, so concurrent jobs only
// contend on the store.
package pipeline
