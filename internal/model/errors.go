package model

import "errors"

// Source-level failures. These abort the whole pipeline run.
var (
	// ErrUnsupportedFormat means the declared source kind is unknown or the
	// payload could not be decoded at all.
	ErrUnsupportedFormat = errors.New("UnsupportedFormat")

	// ErrNoTableDetected means the source decoded but contained no usable
	// rectangular table.
	ErrNoTableDetected = errors.New("NoTableDetected")

	// ErrHeaderAmbiguous means header analysis could not produce columns a
	// required role could be assigned to.
	ErrHeaderAmbiguous = errors.New("HeaderAmbiguous")

	// ErrRoleMappingMissing means a required role (date/time/title) stayed
	// unresolved after overrides, hints and heuristics.
	ErrRoleMappingMissing = errors.New("RoleMappingMissing")
)

// Row-level failures. The offending row is dropped and counted; the pipeline
// proceeds with the valid subset.
var (
	ErrDateParse = errors.New("DateParseFailure")
	ErrTimeParse = errors.New("TimeParseFailure")
)
