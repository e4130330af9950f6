package usecases

import "errors"

var (
	ErrNegativePoints = errors.New("reward source returned negative points")
	ErrInvalidBuffer  = errors.New("reward buffer must be a finite, non-negative number of miles")
	ErrNilUser        = errors.New("user is nil")
)
