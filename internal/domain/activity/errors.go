package activity

import "errors"

var (
	ErrItemNotFound = errors.New("activity item not found")
	ErrInvalidItem  = errors.New("invalid activity item")
	ErrInvalidMeta  = errors.New("invalid activity meta")
)
