// Package pipeline composes the run: resolve the newest playlist entry,
// consult the dedup ledger, download, extract the chapter window, isolate
// the audio segment, and drive the publisher session. Each run ends in an
// Outcome with a stable exit code so the external scheduler can tell
// failure categories apart.
//
// Transient fetch and download failures are retried in-run with bounded
// exponential backoff; everything else waits for the next scheduled
// invocation, which retries naturally because the ledger record stays
// non-published.
package pipeline
