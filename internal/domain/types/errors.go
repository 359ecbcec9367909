package types

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrDatabaseFailed    = errors.New("database operation failed")
	ErrPublishFailed     = errors.New("failed to publish event")
)
