package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound               = errors.New("entity not found")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInvalidThreshold       = errors.New("promotion threshold must be between 1 and 20")
	ErrPromotionMisconfigured = errors.New("active promotion has an unusable threshold")
	ErrBadQRPayload           = errors.New("qr payload does not match the expected format")
	ErrLockBusy               = errors.New("customer record is locked by another operation")
	ErrInvalidExecContext     = errors.New("invalid database execution context")
	ErrNoBroadcastPending     = errors.New("no broadcast pending for this admin")
)
