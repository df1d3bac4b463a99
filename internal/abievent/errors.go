package abievent

import "errors"

var (
	// ErrInvalidData marks a log whose topics do not line up with the
	// event declaration: missing or mismatched signature topic, or a
	// decoded topic count that differs from the topic slots available.
	ErrInvalidData = errors.New("abievent: invalid log data")

	// ErrIncompleteDecode marks a value decoder that reported success but
	// produced fewer values than types, leaving declaration slots unfilled.
	ErrIncompleteDecode = errors.New("abievent: incomplete decode")
)
