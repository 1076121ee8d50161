package fsrs

import "errors"

var (
	ErrInvalidRating     = errors.New("fsrs: invalid rating")
	ErrInvalidParameters = errors.New("fsrs: parameters out of bounds")
)
