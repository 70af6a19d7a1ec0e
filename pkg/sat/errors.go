package sat

import "errors"

var (
	ErrClauseLimitExceeded = errors.New("clause limit exceeded")
	ErrNotWeighted         = errors.New("soft clauses require weighted mode")
	ErrSinkClosed          = errors.New("clause sink is not open for writing")
	ErrHeaderOverflow      = errors.New("header does not fit in the reserved region")
	ErrInvalidDIMACS       = errors.New("invalid DIMACS document")
	ErrMissingModel        = errors.New("solver reported satisfiable without a model")
)
