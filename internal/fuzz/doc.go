// Package fuzztests houses Go fuzz harnesses for the scanner and for
// TRANSCODE. They feed arbitrary bytes in and check that failures come
// back as errors rather than panics, and that a failed scan leaves the
// interpreter balanced.
package fuzztests
