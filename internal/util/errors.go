package util

import "errors"

var (
	ErrEmailRegistered   = errors.New("email already registered")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeDisabled = errors.New("challenge not available")
	ErrInvalidLanguage   = errors.New("unsupported language")
	ErrArchiveNotFound   = errors.New("starter archive not found")
)
