package encoding

import "errors"

var (
	ErrUnknownScheme         = errors.New("unknown cardinality scheme")
	ErrInvalidConfig         = errors.New("invalid encoding configuration")
	ErrUnknownVariable       = errors.New("unknown variable")
	ErrUnsupportedConstraint = errors.New("unsupported constraint")
)
