// Package services defines the business logic for the conversational
// storefront assistant. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing replies or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrStoreNotFound indicates that no registered store matches the
	// hostname of the page URL carried by the request.
	ErrStoreNotFound = errors.New("store not found")

	// ErrNoMessages is returned when a reply is requested for an empty
	// transcript.
	ErrNoMessages = errors.New("no messages in transcript")
)
