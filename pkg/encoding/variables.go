package encoding

import (
	"fmt"

	"github.com/limaJavier/fdsat/internal/logger"
	"github.com/limaJavier/fdsat/pkg/model"
	"github.com/limaJavier/fdsat/pkg/sat"
)

// Shape is the SAT representation chosen for a domain variable
type Shape int

const (
	Unsatisfiable Shape = iota // Empty domain
	Constant                   // One value
	Boolean                    // Two values on a single SAT variable
	Hybrid                     // Direct and order literals with channelling clauses
	DirectOnly
	OrderOnly
)

func (shape Shape) String() string {
	return [...]string{"unsatisfiable", "constant", "boolean", "hybrid", "direct", "order"}[shape]
}

// VariableEncoder writes the representation of each domain variable and fills the mapping
type VariableEncoder struct {
	writer      sat.ClauseWriter
	mapping     *Mapping
	cardinality *CardinalityEncoder
	config      Config
	shapes      map[string]Shape
}

func NewVariableEncoder(writer sat.ClauseWriter, mapping *Mapping, cardinality *CardinalityEncoder, config Config) *VariableEncoder {
	return &VariableEncoder{
		writer:      writer,
		mapping:     mapping,
		cardinality: cardinality,
		config:      config,
		shapes:      make(map[string]Shape),
	}
}

// Shape returns the representation the variable was encoded with
func (encoder *VariableEncoder) Shape(name string) (Shape, bool) {
	shape, ok := encoder.shapes[name]
	return shape, ok
}

// ShapeOf picks the representation of a domain of the given size from the representations the
// constraints need
func (encoder *VariableEncoder) ShapeOf(size uint64, needs model.Representation) Shape {
	switch {
	case size == 0:
		return Unsatisfiable
	case size == 1:
		return Constant
	case size == 2:
		return Boolean
	case encoder.config.ForceBoth || needs.Has(model.BothRepresentation):
		return Hybrid
	case needs.Has(model.DirectRepresentation):
		return DirectOnly
	}
	return OrderOnly
}

// Encode writes the representation of the variable. Variables already encoded are skipped.
// constrained tells whether any constraint mentions the variable.
func (encoder *VariableEncoder) Encode(variable model.Variable, needs model.Representation, constrained bool) (Shape, error) {
	if shape, ok := encoder.shapes[variable.Name]; ok {
		return shape, nil
	}

	shape := encoder.ShapeOf(variable.Domain.Size(), needs|variable.Needs)
	encoder.shapes[variable.Name] = shape
	logger.L().Debug("encoding.variable", "variable", variable.Name, "domain", variable.Domain.String(), "shape", shape.String())

	if err := encoder.writer.AddComment(fmt.Sprintf("Encoding variable: %v with domain: %v (%v, %v encoding)", variable.Name, variable.Domain, variable.Category, shape)); err != nil {
		return shape, err
	}
	encoder.mapping.setDomain(variable.Name, variable.Domain)

	var err error
	switch shape {
	case Unsatisfiable:
		err = encoder.writer.AddClause(sat.False)
	case Constant:
		err = encoder.constant(variable)
	case Boolean:
		err = encoder.boolean(variable, constrained)
	case Hybrid:
		err = encoder.hybrid(variable)
	case DirectOnly:
		err = encoder.directOnly(variable)
	case OrderOnly:
		err = encoder.orderOnly(variable)
	}
	return shape, err
}

func (encoder *VariableEncoder) constant(variable model.Variable) error {
	value, _ := variable.Domain.Bounds()
	literal := encoder.writer.NewVariable()
	if err := encoder.direct(variable.Name, value, literal); err != nil {
		return err
	}
	return encoder.writer.AddClause(literal)
}

func (encoder *VariableEncoder) boolean(variable model.Variable, constrained bool) error {
	lower, upper := variable.Domain.Bounds()
	literal := encoder.writer.NewVariable()

	if err := encoder.direct(variable.Name, upper, literal); err != nil {
		return err
	}
	if err := encoder.direct(variable.Name, lower, -literal); err != nil {
		return err
	}
	if err := encoder.order(variable.Name, upper, sat.True); err != nil {
		return err
	}
	if err := encoder.order(variable.Name, lower, -literal); err != nil {
		return err
	}

	if !constrained {
		// Keeps the variable in the instance so the solver assigns it
		return encoder.writer.AddClause(literal, -literal)
	}
	return nil
}

func (encoder *VariableEncoder) hybrid(variable model.Variable) error {
	values := variable.Domain.Values()
	directs := make([]sat.Literal, len(values))

	previous := sat.False // "variable <= lower - 1"
	for i, value := range values {
		first, last := i == 0, i == len(values)-1

		order := sat.True
		if !last {
			order = encoder.writer.NewVariable()
			if err := encoder.order(variable.Name, value, order); err != nil {
				return err
			}
			if previous != sat.False {
				if err := encoder.writer.AddClause(-previous, order); err != nil {
					return err
				}
			}
		}

		var direct sat.Literal
		switch {
		case last:
			direct = -previous
		case first:
			direct = order
		default:
			direct = encoder.writer.NewVariable()
		}
		if err := encoder.direct(variable.Name, value, direct); err != nil {
			return err
		}

		if !first && !last {
			// Channelling: x > value-1 and x <= value iff x == value
			if err := encoder.writer.AddClause(previous, -order, direct); err != nil {
				return err
			}
			if err := encoder.writer.AddClause(-direct, order); err != nil {
				return err
			}
			if err := encoder.writer.AddClause(-direct, -previous); err != nil {
				return err
			}
		}

		directs[i] = direct
		previous = order
	}

	return encoder.writer.AddClause(directs...)
}

func (encoder *VariableEncoder) directOnly(variable model.Variable) error {
	values := variable.Domain.Values()
	literals := make([]sat.Literal, len(values))
	for i, value := range values {
		literals[i] = encoder.writer.NewVariable()
		if err := encoder.direct(variable.Name, value, literals[i]); err != nil {
			return err
		}
	}
	return encoder.cardinality.ExactlyOne(encoder.config.Scheme, literals)
}

func (encoder *VariableEncoder) orderOnly(variable model.Variable) error {
	values := variable.Domain.Values()

	previous := sat.False
	for i, value := range values {
		key := Key{Variable: variable.Name, Value: value}
		if i == len(values)-1 {
			// The largest value is taken when the last order literal is false
			encoder.mapping.maximum[-previous] = key
			break
		}

		order := encoder.writer.NewVariable()
		if err := encoder.order(variable.Name, value, order); err != nil {
			return err
		}
		if previous == sat.False {
			encoder.mapping.minimum[order] = key
		} else {
			if err := encoder.writer.AddClause(-previous, order); err != nil {
				return err
			}
			encoder.mapping.middle[order] = key
		}
		previous = order
	}
	return nil
}

func (encoder *VariableEncoder) direct(variable string, value int64, literal sat.Literal) error {
	encoder.mapping.setDirect(Key{Variable: variable, Value: value}, literal)
	if encoder.config.OutputMapping {
		return encoder.writer.AddComment(fmt.Sprintf("%v = %d is %v", variable, value, literal))
	}
	return nil
}

func (encoder *VariableEncoder) order(variable string, value int64, literal sat.Literal) error {
	encoder.mapping.setOrder(Key{Variable: variable, Value: value}, literal)
	if encoder.config.OutputMapping {
		return encoder.writer.AddComment(fmt.Sprintf("%v <= %d is %v", variable, value, literal))
	}
	return nil
}
