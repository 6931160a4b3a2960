package listing

import "errors"

var (
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrInvalidDirection = errors.New("sort direction must be asc or desc")
)
