package errors

import "errors"

var (
	ErrNotFound         = errors.New("booking not found")
	ErrInvalidID        = errors.New("invalid booking id")
	ErrSlotTaken        = errors.New("requested slot overlaps an existing booking")
	ErrInvalidTimeRange = errors.New("start time must be before end time")
)
