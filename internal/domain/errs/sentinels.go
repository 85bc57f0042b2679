// Package errs contains sentinel errors used across layers for stable error
// mapping at the HTTP boundary.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredential indicates a password mismatch on login.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrAlreadyExists indicates the email is already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates missing or malformed user input. It blocks
	// progression of the triggering action only.
	ErrValidation = errors.New("validation failed")

	// ErrMissingCredential indicates a required API key or channel
	// configuration is absent.
	ErrMissingCredential = errors.New("missing credential")

	// ErrMalformedResponse indicates the generative-text API returned a reply
	// no draft could be parsed from.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrDeliveryFailed indicates a real channel call returned non-2xx.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrStageIncomplete indicates a wizard stage was driven without its
	// prerequisite data. The HTTP flow cannot reach this; hitting it means a
	// caller bug.
	ErrStageIncomplete = errors.New("stage prerequisite missing")

	// ErrBusy indicates a duplicate submission while the same action is still
	// in flight.
	ErrBusy = errors.New("action already in progress")
)
