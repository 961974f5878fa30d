// Package upscaler talks to the remote image-upscaling service over HTTP.
//
// The service exposes a fire-and-forget multipart upload endpoint and a
// per-client listing endpoint; there is no per-job handle, so callers
// discover completion by polling the listing and reading result URLs from
// its completed sequence. The HTTP backend is injectable for tests.
package upscaler
