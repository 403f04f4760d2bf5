// Package scan splits UTF-8 source into tokens: numbers, words with their
// sigils and colons, strings, tags, runes, binaries, delimiters and the
// quote and quasi decorations. Building arrays out of tokens is the job of
// the scanner executor in package vm, which nests through levels instead
// of recursion.
package scan
