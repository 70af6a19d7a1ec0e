package sat

import (
	"fmt"
	"math"
)

// Literal is a DIMACS literal: the sign is the polarity and the magnitude is the variable.
type Literal int64

const (
	// True is a literal that holds in every assignment. It is never allocated nor written.
	True Literal = math.MaxInt64
	// False is the negation of True.
	False Literal = -True
)

func (literal Literal) Negate() Literal {
	return -literal
}

// Var returns the variable of the literal (its magnitude)
func (literal Literal) Var() int64 {
	if literal < 0 {
		return int64(-literal)
	}
	return int64(literal)
}

func (literal Literal) IsPositive() bool {
	return literal > 0
}

// IsConstant reports whether the literal is one of the two sentinels
func (literal Literal) IsConstant() bool {
	return literal == True || literal == False
}

func (literal Literal) String() string {
	switch literal {
	case True:
		return "T"
	case False:
		return "F"
	}
	return fmt.Sprintf("%d", int64(literal))
}

// normalize applies the sentinel rules to a clause: a clause containing True is dropped (ok == false)
// and False literals are removed. The returned slice never aliases the input.
func normalize(context []Literal, literals []Literal) (clause []Literal, ok bool) {
	clause = make([]Literal, 0, len(context)+len(literals))
	for _, group := range [2][]Literal{context, literals} {
		for _, literal := range group {
			switch {
			case literal == True:
				return nil, false
			case literal == False:
				continue
			case literal == 0:
				panic("null literal in clause")
			}
			clause = append(clause, literal)
		}
	}
	return clause, true
}
