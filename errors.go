package heatmap

import "errors"

// Errors returned at the API boundary. All of them are validated rejections;
// nothing in the pipeline retries.
var (
	// ErrInit wraps any device initialization failure. A Heatmap is never
	// returned alongside it.
	ErrInit = errors.New("heatmap: device initialization failed")

	// ErrGridSize is returned when the sample count does not equal
	// width*height or a dimension is negative.
	ErrGridSize = errors.New("heatmap: sample count does not match width*height")

	// ErrRowLength is returned by AddRow when the row length differs from
	// the current grid width.
	ErrRowLength = errors.New("heatmap: row length does not match grid width")

	// ErrEmptyRow is returned by AddRow for a zero-length row.
	ErrEmptyRow = errors.New("heatmap: empty row")

	// ErrInvalidMaxRows is returned by AddRow for a negative row cap.
	ErrInvalidMaxRows = errors.New("heatmap: maxRows must be >= 0")

	// ErrInvalidDirection is returned by AddRow for an unknown direction.
	ErrInvalidDirection = errors.New("heatmap: unknown row direction")

	// ErrEmptyGradient is returned when a gradient has no stops.
	ErrEmptyGradient = errors.New("heatmap: gradient has no stops")

	// ErrTooManyStops is returned when a gradient exceeds MaxStops.
	ErrTooManyStops = errors.New("heatmap: gradient exceeds MaxStops")

	// ErrUnorderedStops is returned when stop offsets decrease.
	ErrUnorderedStops = errors.New("heatmap: gradient offsets must be non-decreasing")

	// ErrInvalidOffset is returned for NaN or infinite stop offsets.
	ErrInvalidOffset = errors.New("heatmap: gradient offset is not finite")

	// ErrInvalidViewport is returned for negative viewport dimensions.
	ErrInvalidViewport = errors.New("heatmap: invalid viewport dimensions")

	// ErrNoFrameReader is returned by Snapshot when the device cannot read
	// back rendered pixels.
	ErrNoFrameReader = errors.New("heatmap: device does not support frame readback")

	// ErrClosed is returned by operations on a closed Heatmap.
	ErrClosed = errors.New("heatmap: closed")
)
