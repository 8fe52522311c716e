package scryfall

import (
	"errors"
	"fmt"
)

// ErrNoImage is returned when a card exists but has no usable image.
var ErrNoImage = errors.New("no image available")

// NotFoundError reports that the API has no card matching the query.
type NotFoundError struct {
	Query   string
	Details string
}

func (e *NotFoundError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("card not found: %s (%s)", e.Query, e.Details)
	}
	return fmt.Sprintf("card not found: %s", e.Query)
}

// NetworkError reports a transport failure or an unexpected HTTP status.
type NetworkError struct {
	URL    string
	Status int // zero when no response was received
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request %s returned status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
