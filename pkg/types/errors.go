// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds raised by the transforms. Callers match them with errors.Is;
// every failure is wrapped with the path and operation that caused it.
var (
	// ErrFileSystem reports a missing or unreadable input directory.
	ErrFileSystem = errors.New("filesystem error")

	// ErrDecode reports an unreadable, corrupt, or unsupported image.
	ErrDecode = errors.New("decode error")

	// ErrSchema reports a table missing an expected column.
	ErrSchema = errors.New("schema error")

	// ErrParse reports malformed tabular data or a non-numeric value in the
	// filtered column.
	ErrParse = errors.New("parse error")

	// ErrIO reports a failure creating or writing an output file.
	ErrIO = errors.New("io error")
)

var errorKinds = []struct {
	err  error
	name string
}{
	{ErrFileSystem, "filesystem"},
	{ErrDecode, "decode"},
	{ErrSchema, "schema"},
	{ErrParse, "parse"},
	{ErrIO, "io"},
}

// Kind returns the short name of the error kind wrapped by err, "" for nil,
// or "unknown" when err carries none of the kinds above.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
