package apperror

import "errors"

var (
	ErrBlockAlreadyClaimed = errors.New("block is already claimed")
	ErrInvalidCoordinate   = errors.New("invalid coordinates")
	ErrEmptyName           = errors.New("name is empty")
	ErrIdentityNotFound    = errors.New("identity not found")
)
