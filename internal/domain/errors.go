package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRemote       = errors.New("remote request failed")
	ErrRateLimited  = errors.New("rate limited")
)
