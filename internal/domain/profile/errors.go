package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoUser          = errors.New("no authenticated user")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrStorageDisabled = errors.New("avatar storage not configured")
)
