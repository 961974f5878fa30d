// Package identity assigns and persists per-image client identifiers for the
// remote upscaling service.
//
// The service correlates jobs by client, not by submission, so each image
// name maps to one stable 32-hex-character identifier kept in a shared JSON
// file. Access goes through the Store interface; the file-backed
// implementation serializes read-modify-write cycles with a file lock and
// resolves concurrent first encounters of the same name to a single winner.
package identity
