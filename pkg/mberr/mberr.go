// Package mberr defines the closed set of sentinel errors shared across
// MindBase's core packages, so callers can discriminate failure kinds with
// errors.Is instead of string matching.
package mberr

import (
	"errors"
	"strconv"
)

var (
	// ErrNotFound is returned when a claim or artifact is missing by id.
	ErrNotFound = errors.New("mindbase: not found")

	// ErrSignature is returned when an Ed25519 or HMAC check fails.
	ErrSignature = errors.New("mindbase: signature verification failed")

	// ErrDecoding is returned on malformed base64 or binary payloads.
	ErrDecoding = errors.New("mindbase: decoding failed")

	// ErrCorruption is returned when an atom references a claim id that
	// does not resolve to a stored claim.
	ErrCorruption = errors.New("mindbase: dangling atom reference")

	// ErrArtifactVarNotFound is returned when an MBQL statement references
	// an undeclared @var.
	ErrArtifactVarNotFound = errors.New("mbql: artifact variable not found")

	// ErrSymbolVarNotFound is returned when an MBQL statement references
	// an undeclared $var.
	ErrSymbolVarNotFound = errors.New("mbql: symbol variable not found")

	// ErrSymbolVarBindingFailed is returned when a bound symbol variable's
	// defining statement fails to resolve.
	ErrSymbolVarBindingFailed = errors.New("mbql: symbol variable binding failed")

	// ErrGSymNotFound is returned when Ground (or Ground!) cannot find a
	// matching symbol and vivification is disabled or exhausted.
	ErrGSymNotFound = errors.New("mbql: ground symbol not found")

	// ErrCycle is returned when variable resolution re-enters a slot that
	// is already being resolved.
	ErrCycle = errors.New("mbql: cyclic variable resolution")
)

// ParseError reports a syntax error at a specific row/column of MBQL source.
type ParseError struct {
	Row    int
	Column int
	Input  string
	Detail string
}

func (e *ParseError) Error() string {
	return "mbql: parse error at " + strconv.Itoa(e.Row) + ":" + strconv.Itoa(e.Column) + ": " + e.Detail
}
