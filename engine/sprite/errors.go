package sprite

import "errors"

var (
	ErrCapacityExceeded = errors.New("sprite pool capacity exceeded")
	ErrStaleIndex       = errors.New("sprite index out of active range")
	ErrAlreadyRemoved   = errors.New("sprite already removed")
	ErrStaleHandle      = errors.New("sprite handle refers to a recycled slot")
	ErrInvalidTexture   = errors.New("invalid texture")
	ErrInvalidLayer     = errors.New("invalid layer")
	ErrInvalidFrame     = errors.New("frame index out of range")
	ErrPoolClosed       = errors.New("sprite pool closed")
)
