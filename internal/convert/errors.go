package convert

import "errors"

// Only these two sentinels abort a conversion. Everything else degrades
// to a processing note.
var (
	// ErrParse means the input is not well-formed XML.
	ErrParse = errors.New("xml parse failed")
	// ErrAssembly means the workbook could not be built atomically,
	// for example because a sheet exceeded the configured bounds.
	ErrAssembly = errors.New("workbook assembly failed")
)
