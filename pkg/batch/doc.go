// Package batch runs an operation over many items with per-item retries,
// optional bounded concurrency and chunk-level early exit.
//
// Items are split into chunks of Options.BatchSize. Within a chunk items run
// one after another, or, with Options.Parallel, through a fixed worker pool
// of at most Options.MaxConcurrency workers. Every item goes through
// ProcessItem, which retries transient failures with exponential backoff and
// turns the terminal outcome into an ItemResult; an item failure never aborts
// its siblings.
//
// When Options.ContinueOnError is false the coordinator stops after the first
// chunk that contains a failure. Items already dispatched in that chunk still
// finish; later chunks are never started.
//
// Basic usage:
//
//	coord := batch.NewCoordinator(batch.WithLogger(logger))
//	result, err := batch.Run(coord, ctx, docs, createDocument, batch.DefaultOptions())
//	if err != nil {
//		return err // invalid options or empty input
//	}
//	fmt.Println(batch.Format(result).Summary)
package batch
