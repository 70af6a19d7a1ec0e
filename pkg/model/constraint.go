package model

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Operand is either a variable reference or an integer constant
type Operand struct {
	Variable string // Empty for constants
	Constant int64
}

func Var(name string) Operand {
	return Operand{Variable: name}
}

func Const(value int64) Operand {
	return Operand{Constant: value}
}

func (operand Operand) IsConstant() bool {
	return operand.Variable == ""
}

func (operand Operand) String() string {
	if operand.IsConstant() {
		return strconv.FormatInt(operand.Constant, 10)
	}
	return operand.Variable
}

type Kind int

const (
	Relation    Kind = iota // Test holds on the values of one to three operands
	Functional              // Operands[2] == Function(Operands[0], Operands[1])
	AtMost                  // Operands[0] <= Value
	AtLeast                 // Operands[0] >= Value
	AtMostOne               // At most one operand equals 1
	ExactlyOne              // Exactly one operand equals 1
	Disjunction             // At least one operand equals 1
)

func (kind Kind) String() string {
	switch kind {
	case Relation:
		return "relation"
	case Functional:
		return "functional"
	case AtMost:
		return "atmost"
	case AtLeast:
		return "atleast"
	case AtMostOne:
		return "atmostone"
	case ExactlyOne:
		return "exactlyone"
	case Disjunction:
		return "or"
	}
	return fmt.Sprintf("kind(%d)", int(kind))
}

// Encoding selects how a relation is compiled into clauses
type Encoding int

const (
	EncodingAuto Encoding = iota
	EncodingDirect
	EncodingSupport
)

func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return EncodingAuto, nil
	case "direct":
		return EncodingDirect, nil
	case "support":
		return EncodingSupport, nil
	}
	return 0, fmt.Errorf("%w: unknown constraint encoding %q", ErrInvalidModel, name)
}

type Constraint struct {
	Name     string
	Kind     Kind
	Operands []Operand
	Test     func(values ...int64) bool     // Relation
	Function func(x, y int64) (int64, bool) // Functional; false when undefined on (x, y)
	Value    int64                          // AtMost and AtLeast threshold
	Reify    string                         // Boolean variable equivalent to the constraint; empty when posted
	Encoding Encoding
	TopLevel bool // Directly under the top-level conjunction
}

func (constraint Constraint) String() string {
	if constraint.Name != "" {
		return constraint.Name
	}
	return fmt.Sprintf("%v(%v)", constraint.Kind, strings.Join(lo.Map(constraint.Operands, func(operand Operand, _ int) string { return operand.String() }), ", "))
}

// Variables returns the variables the constraint mentions, the reification variable included
func (constraint Constraint) Variables() []string {
	names := lo.FilterMap(constraint.Operands, func(operand Operand, _ int) (string, bool) {
		return operand.Variable, !operand.IsConstant()
	})
	if constraint.Reify != "" {
		names = append(names, constraint.Reify)
	}
	return lo.Uniq(names)
}

func (constraint Constraint) Validate() error {
	operands := len(constraint.Operands)
	switch constraint.Kind {
	case Relation:
		if constraint.Test == nil {
			return fmt.Errorf("%w: relation %v without a test", ErrInvalidModel, constraint)
		} else if operands < 1 || operands > 3 {
			return fmt.Errorf("%w: relation %v has %d operands", ErrInvalidModel, constraint, operands)
		}
	case Functional:
		if constraint.Function == nil {
			return fmt.Errorf("%w: functional constraint %v without a function", ErrInvalidModel, constraint)
		} else if operands != 3 {
			return fmt.Errorf("%w: functional constraint %v has %d operands", ErrInvalidModel, constraint, operands)
		}
	case AtMost, AtLeast:
		if operands != 1 {
			return fmt.Errorf("%w: bound %v has %d operands", ErrInvalidModel, constraint, operands)
		}
	case AtMostOne, ExactlyOne, Disjunction:
	default:
		return fmt.Errorf("%w: unknown constraint kind %d", ErrInvalidModel, constraint.Kind)
	}
	return nil
}

// Satisfied evaluates the constraint on operand values, ignoring the reification variable
func (constraint Constraint) Satisfied(values ...int64) bool {
	switch constraint.Kind {
	case Relation:
		return constraint.Test(values...)
	case Functional:
		result, ok := constraint.Function(values[0], values[1])
		return ok && result == values[2]
	case AtMost:
		return values[0] <= constraint.Value
	case AtLeast:
		return values[0] >= constraint.Value
	}

	ones := lo.CountBy(values, func(value int64) bool { return value == 1 })
	switch constraint.Kind {
	case AtMostOne:
		return ones <= 1
	case ExactlyOne:
		return ones == 1
	case Disjunction:
		return ones >= 1
	}
	log.Panicf("unknown constraint kind %d", constraint.Kind)
	return false
}

// Check evaluates the constraint on a complete assignment. A reified constraint holds when the
// reification variable is 1 exactly when the constraint is satisfied.
func (constraint Constraint) Check(assignment map[string]int64) bool {
	value := func(operand Operand) int64 {
		if operand.IsConstant() {
			return operand.Constant
		}
		value, ok := assignment[operand.Variable]
		if !ok {
			log.Panicf("variable %q is not assigned", operand.Variable)
		}
		return value
	}

	satisfied := constraint.Satisfied(lo.Map(constraint.Operands, func(operand Operand, _ int) int64 { return value(operand) })...)
	if constraint.Reify == "" {
		return satisfied
	}
	return satisfied == (value(Var(constraint.Reify)) == 1)
}

type Preference struct {
	Variable string
	Value    int64
	Weight   int64
}

// Objective asks for the smallest (or largest) value of a variable
type Objective struct {
	Variable string
	Maximise bool
}
