package group

import "errors"

var (
	ErrNoUser               = errors.New("no authenticated user")
	ErrNoGroup              = errors.New("user has no group")
	ErrGroupNotFound        = errors.New("group not found")
	ErrGroupCodeNotFound    = errors.New("group code not found")
	ErrAlreadyMember        = errors.New("already a member of this group")
	ErrAlreadyInGroup       = errors.New("already in another group")
	ErrGroupFull            = errors.New("group is full")
	ErrMemberNotFound       = errors.New("member not found")
	ErrNotAdmin             = errors.New("not admin")
	ErrCannotRemoveSelf     = errors.New("cannot remove yourself")
	ErrLastAdmin            = errors.New("group needs at least one admin")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidGroup         = errors.New("invalid group")
	ErrCodeGenerationFailed = errors.New("group code generation failed")
	ErrStorageDisabled      = errors.New("avatar storage not configured")
)
