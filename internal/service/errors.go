package service

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("failed to validate credentials")

	ErrUserNotFound      = errors.New("user not found")
	ErrInviteNotFound    = errors.New("invite not found")
	ErrSelfInvite        = errors.New("cannot invite yourself")
	ErrDuplicateInvite   = errors.New("invite already sent")
	ErrNotInviteReceiver = errors.New("only the invited user can answer this invite")
	ErrNotSameFamily     = errors.New("not in the same family group")

	ErrDiagnosisNotFound    = errors.New("diagnosis not found")
	ErrNotDiagnosisOwner    = errors.New("diagnosis belongs to another user")
	ErrInvalidVisibility    = errors.New("visibility must be private or public")
	ErrNoSymptoms           = errors.New("at least one symptom is required")
	ErrDiagnosisUnavailable = errors.New("diagnosis service unavailable")

	ErrRecordNotFound = errors.New("medical record not found")
)
