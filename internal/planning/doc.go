// Package planning implements the first workflow stage: it assigns the
// stable client identity for the image, probes source dimensions, and
// computes the pass plan the upscaling stage executes.
package planning
