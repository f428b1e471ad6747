package models

import "errors"

var (
	ErrConfig        = errors.New("invalid configuration")
	ErrInvalidEngine = errors.New("invalid engine")
)
