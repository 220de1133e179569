package model

import "errors"

// IsMalformed reports whether err came from rejecting stored or submitted data.
// Such errors do not go away on retry.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedTime) ||
		errors.Is(err, ErrMalformedDate) ||
		errors.Is(err, ErrMalformedStatus)
}
