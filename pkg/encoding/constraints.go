package encoding

import (
	"fmt"
	"math"

	"github.com/limaJavier/fdsat/internal/logger"
	"github.com/limaJavier/fdsat/pkg/model"
	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/samber/lo"
)

// ConstraintEncoder compiles constraints over encoded variables into clauses
type ConstraintEncoder struct {
	writer      sat.ClauseWriter
	mapping     *Mapping
	cardinality *CardinalityEncoder
	catalog     model.VariableCatalog
}

func NewConstraintEncoder(writer sat.ClauseWriter, mapping *Mapping, cardinality *CardinalityEncoder, catalog model.VariableCatalog) *ConstraintEncoder {
	return &ConstraintEncoder{
		writer:      writer,
		mapping:     mapping,
		cardinality: cardinality,
		catalog:     catalog,
	}
}

// Needs returns the representations the encoding of the constraint reads for each of its variables
func Needs(constraint model.Constraint) map[string]model.Representation {
	needs := make(map[string]model.Representation)
	representation := model.DirectRepresentation
	if constraint.Kind == model.AtMost || constraint.Kind == model.AtLeast {
		representation = model.OrderRepresentation
	}
	for _, operand := range constraint.Operands {
		if !operand.IsConstant() {
			needs[operand.Variable] |= representation
		}
	}
	if constraint.Reify != "" {
		needs[constraint.Reify] |= model.DirectRepresentation
	}
	return needs
}

// Encode writes the clauses of the constraint. A reified constraint is made equivalent to its
// Boolean variable being 1; a posted one is encoded as if that variable were true.
func (encoder *ConstraintEncoder) Encode(constraint model.Constraint) error {
	if err := constraint.Validate(); err != nil {
		return err
	}
	for _, name := range constraint.Variables() {
		if _, ok := encoder.catalog.Domain(name); !ok {
			return fmt.Errorf("%w %q in %v", ErrUnknownVariable, name, constraint)
		}
	}
	for name, representation := range Needs(constraint) {
		if !encoder.mapping.Has(name, representation) {
			return fmt.Errorf("%w: %v needs %q to be encoded with %v literals", ErrUnsupportedConstraint, constraint, name, representationName(representation))
		}
	}

	aux := sat.True
	if constraint.Reify != "" {
		aux = encoder.mapping.Direct(constraint.Reify, 1)
	}
	operands := constraint.Operands
	logger.L().Debug("encoding.constraint", "constraint", constraint.String(), "kind", constraint.Kind.String(), "reified", constraint.Reify != "")

	switch constraint.Kind {
	case model.Relation:
		test := constraint.Test
		switch {
		case len(operands) == 2 && constraint.Encoding != model.EncodingDirect && !operands[0].IsConstant() && !operands[1].IsConstant():
			return encoder.support(operands[0], operands[1], func(i, j int64) bool { return test(i, j) }, aux)
		case len(operands) == 3 && constraint.Encoding != model.EncodingDirect && constraint.Reify == "" && operands[2].IsConstant():
			third := operands[2].Constant
			return encoder.support(operands[0], operands[1], func(i, j int64) bool { return test(i, j, third) }, aux)
		}
		return encoder.direct(operands, test, aux)

	case model.Functional:
		switch {
		case constraint.Reify != "":
			return encoder.direct(operands, constraint.Satisfied, aux)
		case operands[2].IsConstant():
			third := operands[2].Constant
			return encoder.support(operands[0], operands[1], func(i, j int64) bool { return constraint.Satisfied(i, j, third) }, aux)
		}
		return encoder.functional(operands[0], operands[1], operands[2], constraint.Function)

	case model.AtMost:
		return encoder.equivalent(aux, encoder.orderOf(operands[0], constraint.Value))

	case model.AtLeast:
		if constraint.Value == math.MinInt64 {
			return encoder.equivalent(aux, sat.True)
		}
		return encoder.equivalent(aux, -encoder.orderOf(operands[0], constraint.Value-1))

	case model.AtMostOne, model.ExactlyOne:
		if constraint.Reify != "" {
			return fmt.Errorf("%w: %v cannot be reified", ErrUnsupportedConstraint, constraint.Kind)
		}
		scheme := encoder.cardinality.SchemeFor(encoder.eligible(constraint))
		return encoder.cardinality.Encode(scheme, encoder.ones(operands), constraint.Kind == model.ExactlyOne)

	case model.Disjunction:
		return encoder.disjunction(encoder.ones(operands), aux)
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedConstraint, constraint.Kind)
}

// eligible tells whether the constraint sits under the top-level conjunction and only counts
// plain Boolean variables
func (encoder *ConstraintEncoder) eligible(constraint model.Constraint) bool {
	return constraint.TopLevel && constraint.Reify == "" && lo.EveryBy(constraint.Operands, func(operand model.Operand) bool {
		if operand.IsConstant() {
			return false
		}
		domain, _ := encoder.catalog.Domain(operand.Variable)
		return domain.IsBoolean()
	})
}

func (encoder *ConstraintEncoder) ones(operands []model.Operand) []sat.Literal {
	return lo.Map(operands, func(operand model.Operand, _ int) sat.Literal { return encoder.directOf(operand, 1) })
}

// direct forbids every combination of values failing the test; when reified, every passing
// combination implies aux
func (encoder *ConstraintEncoder) direct(operands []model.Operand, test func(values ...int64) bool, aux sat.Literal) error {
	domains := lo.Map(operands, func(operand model.Operand, _ int) []int64 { return encoder.domainOf(operand) })
	values := make([]int64, len(operands))
	literals := make([]sat.Literal, len(operands)+1)

	var walk func(index int) error
	walk = func(index int) error {
		if index == len(operands) {
			if test(values...) {
				literals[len(operands)] = aux
			} else {
				literals[len(operands)] = -aux
			}
			return encoder.writer.AddClause(literals...)
		}
		for _, value := range domains[index] {
			values[index] = value
			literals[index] = -encoder.directOf(operands[index], value)
			if err := walk(index + 1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(0)
}

// support writes, for each value of either operand, the clause requiring one of its supports in the
// other operand; the reified form adds the matching clause over the non-supports
func (encoder *ConstraintEncoder) support(x, y model.Operand, test func(i, j int64) bool, aux sat.Literal) error {
	if err := encoder.supportSide(x, y, test, aux); err != nil {
		return err
	}
	return encoder.supportSide(y, x, func(j, i int64) bool { return test(i, j) }, aux)
}

func (encoder *ConstraintEncoder) supportSide(x, y model.Operand, test func(i, j int64) bool, aux sat.Literal) error {
	others := encoder.domainOf(y)
	for _, i := range encoder.domainOf(x) {
		literal := encoder.directOf(x, i)
		conflict := []sat.Literal{-aux, -literal}
		support := []sat.Literal{aux, -literal}
		for _, j := range others {
			if test(i, j) {
				conflict = append(conflict, encoder.directOf(y, j))
			} else {
				support = append(support, encoder.directOf(y, j))
			}
		}
		if err := encoder.writer.AddClause(conflict...); err != nil {
			return err
		}
		if err := encoder.writer.AddClause(support...); err != nil {
			return err
		}
	}
	return nil
}

// functional forces z to f(x, y) for every pair of values; pairs where f is undefined, or whose
// result is outside the domain of z, are forbidden
func (encoder *ConstraintEncoder) functional(x, y, z model.Operand, function func(x, y int64) (int64, bool)) error {
	others := encoder.domainOf(y)
	for _, i := range encoder.domainOf(x) {
		for _, j := range others {
			result := sat.False
			if k, ok := function(i, j); ok {
				result = encoder.directOf(z, k)
			}
			if err := encoder.writer.AddClause(-encoder.directOf(x, i), -encoder.directOf(y, j), result); err != nil {
				return err
			}
		}
	}
	return nil
}

// equivalent writes aux <=> literal
func (encoder *ConstraintEncoder) equivalent(aux, literal sat.Literal) error {
	if err := encoder.writer.AddClause(-aux, literal); err != nil {
		return err
	}
	return encoder.writer.AddClause(aux, -literal)
}

// disjunction writes aux <=> OR(literals)
func (encoder *ConstraintEncoder) disjunction(literals []sat.Literal, aux sat.Literal) error {
	if err := encoder.writer.AddClause(append([]sat.Literal{-aux}, literals...)...); err != nil {
		return err
	}
	for _, literal := range literals {
		if err := encoder.writer.AddClause(-literal, aux); err != nil {
			return err
		}
	}
	return nil
}

func (encoder *ConstraintEncoder) domainOf(operand model.Operand) []int64 {
	if operand.IsConstant() {
		return []int64{operand.Constant}
	}
	domain, _ := encoder.catalog.Domain(operand.Variable)
	return domain.Values()
}

func (encoder *ConstraintEncoder) directOf(operand model.Operand, value int64) sat.Literal {
	if operand.IsConstant() {
		if operand.Constant == value {
			return sat.True
		}
		return sat.False
	}
	return encoder.mapping.Direct(operand.Variable, value)
}

func (encoder *ConstraintEncoder) orderOf(operand model.Operand, value int64) sat.Literal {
	if operand.IsConstant() {
		if operand.Constant <= value {
			return sat.True
		}
		return sat.False
	}
	return encoder.mapping.Order(operand.Variable, value)
}

func representationName(representation model.Representation) string {
	switch representation {
	case model.DirectRepresentation:
		return "direct"
	case model.OrderRepresentation:
		return "order"
	}
	return "direct and order"
}
