// Package imaging handles local image work for the pipeline: probing
// dimensions, the final high-quality resample to exact target size, and
// stamping DPI metadata into the encoded JPEG.
package imaging
