package services

import "errors"

var (
	ErrModelNotFound      = errors.New("model not found")
	ErrModelExists        = errors.New("a model under this name already exists")
	ErrInvalidModel       = errors.New("invalid model artifact")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid login details")
)
