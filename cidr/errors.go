package cidr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNetwork is returned for text that is not a host, a CIDR
	// block or an inclusive range of one address family.
	ErrInvalidNetwork = errors.New("invalid network")
	// ErrSupernetSearchExhausted is returned when no block of the family
	// covers both endpoints of a range.
	ErrSupernetSearchExhausted = errors.New("supernet search exhausted")
)

// ParseError records the text that failed to parse and why.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q", e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
