package payment

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("payment not found")
	ErrProvider         = errors.New("payment provider error")
	ErrMalformedInput   = errors.New("malformed input")
	ErrConcurrentUpdate = errors.New("concurrent update")
)
