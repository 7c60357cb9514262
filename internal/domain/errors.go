package domain

import "errors"

var (
	// Mutation errors
	ErrRecordNotFound = errors.New("record not found")
	ErrWriteFailed    = errors.New("write rejected by remote store")

	// Subscription errors
	ErrSubscriptionClosed = errors.New("subscription closed")

	// Edit-session errors
	ErrSessionClosed = errors.New("no edit session is open")
	ErrUnknownField  = errors.New("unknown draft field")
)
