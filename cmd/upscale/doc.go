// Command upscale drives the multi-pass image upscaling pipeline from the
// terminal: running images to their target size, inspecting recorded runs,
// managing stored client identities, and validating the environment.
package main
