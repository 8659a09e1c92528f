package errors

import "errors"

var (
	ErrNotFound = errors.New("equipment not found")

	ErrInvalidID = errors.New("invalid equipment ID format")

	ErrReviewNotFound = errors.New("review not found")
)
