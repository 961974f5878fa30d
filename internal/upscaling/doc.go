// Package upscaling drives the remote magnification passes of a run.
//
// The Executor performs a single submit, poll, download cycle against the
// remote service; the Upscaler stage handler chains executor passes, feeding
// each pass's output into the next and persisting the pass cursor so a
// re-invoked run can resume from the last completed pass. All failures are
// fatal to the run; no pass is retried automatically.
package upscaling
