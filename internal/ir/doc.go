// Package ir defines the persisted result types of a sweep and their
// canonical encoding.
//
// Records are written as RFC 8785 canonical JSON: keys sorted by UTF-16 code
// units, NFC-normalised strings, no HTML escaping and no floats. Two equal
// records always encode to the same bytes, so stored records can be diffed
// and digested directly.
//
// This package imports nothing internal.
package ir
