// Package workflow advances upscale runs through the configured processing
// stages.
//
// The Manager walks a run through planning, upscaling, and resizing in a
// fixed order driven by the run's status, capturing progress and failure
// metadata along the way. Any stage error is terminal for the run: the item
// is marked failed with the error kind recorded and no partial artifact is
// reported. UpscaleToTarget is the single entry point exposed to the CLI and
// other callers; plan and pass hooks give front ends advisory progress
// without control-flow significance.
//
// Add new lifecycle stages by extending StageSet, updating the run status
// enums, and teaching the manager how to transition items; this package is
// the authoritative home for that coordination logic.
package workflow
