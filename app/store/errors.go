package store

import "errors"

// errors returned by Store, wrapped with details. Check with errors.Is
var (
	ErrValidation           = errors.New("validation error")
	ErrDuplicateEmail       = errors.New("an account with this email already exists")
	ErrDuplicateApplication = errors.New("already applied for this job")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAuthRequired         = errors.New("sign in required")
	ErrNotFound             = errors.New("job not found")
	ErrStorage              = errors.New("storage error")
)
