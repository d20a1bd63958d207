package message

import "errors"

var (
	ErrFrameBuild  = errors.New("message: frame build failed")
	ErrFrameDecode = errors.New("message: frame decode failed")
	ErrIncomplete  = errors.New("message: incomplete frame")
	ErrTooLarge    = errors.New("message: data too large")
)
