package model

import "github.com/rotisserie/eris"

// Error kinds surfaced by a suitability run. Callers wrap them with context
// and match with eris.Is.
var (
	// ErrInvalidInput covers empty target areas, malformed dataset specs and
	// requests with no chosen dataset.
	ErrInvalidInput = eris.New("invalid input")

	// ErrAlignmentMismatch is returned when aligned grids of the chosen
	// datasets disagree in shape.
	ErrAlignmentMismatch = eris.New("alignment mismatch")

	// ErrEncodingFailure is returned when the output raster cannot be built
	// from the suitability grid and its reference metadata.
	ErrEncodingFailure = eris.New("encoding failure")
)
