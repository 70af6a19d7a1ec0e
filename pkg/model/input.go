package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/limaJavier/fdsat/internal/document"
	"github.com/samber/lo"
)

type RawVariable struct {
	Name     string
	Domain   [][]int64 // Closed intervals as [lower, upper] pairs
	Values   []int64
	Category string
	Encoding string
}

type RawConstraint struct {
	Name     string
	Relation string
	Operands []any // Variable names or integer constants
	Offset   int64
	Value    int64
	Encoding string
	Reify    string
	TopLevel *bool
}

type RawObjective struct {
	Minimise string
	Maximise string
}

type RawModel struct {
	Variables   []RawVariable
	Constraints []RawConstraint
	Preferences []Preference
	Objective   *RawObjective
}

type Model struct {
	Catalog     *Catalog
	Constraints []Constraint
	Preferences []Preference
	Objective   *Objective
}

// ModelFromFile loads a YAML or JSON model file
func ModelFromFile(file string) (Model, error) {
	var rawModel RawModel
	if err := document.Decode(file, &rawModel); err != nil {
		return Model{}, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return ProcessRawModel(rawModel)
}

func ProcessRawModel(rawModel RawModel) (Model, error) {
	catalog, _ := NewCatalog()
	for _, rawVariable := range rawModel.Variables {
		variable, err := processRawVariable(rawVariable)
		if err != nil {
			return Model{}, err
		}
		if err := catalog.Add(variable); err != nil {
			return Model{}, err
		}
	}

	model := Model{Catalog: catalog, Constraints: make([]Constraint, 0, len(rawModel.Constraints))}
	for _, rawConstraint := range rawModel.Constraints {
		constraints, err := processRawConstraint(rawConstraint, catalog)
		if err != nil {
			return Model{}, err
		}
		model.Constraints = append(model.Constraints, constraints...)
	}

	for _, preference := range rawModel.Preferences {
		if _, ok := catalog.Variable(preference.Variable); !ok {
			return Model{}, fmt.Errorf("%w: preference on unknown variable %q", ErrInvalidModel, preference.Variable)
		} else if preference.Weight <= 0 {
			return Model{}, fmt.Errorf("%w: preference on %q must have a positive weight", ErrInvalidModel, preference.Variable)
		}
	}
	model.Preferences = rawModel.Preferences

	if rawModel.Objective != nil {
		objective, err := processRawObjective(*rawModel.Objective, catalog)
		if err != nil {
			return Model{}, err
		}
		model.Objective = &objective
	}

	return model, nil
}

// Check returns the first constraint the assignment violates, if any
func (model Model) Check(assignment map[string]int64) (Constraint, bool) {
	return lo.Find(model.Constraints, func(constraint Constraint) bool { return !constraint.Check(assignment) })
}

func processRawVariable(rawVariable RawVariable) (Variable, error) {
	var domain Domain
	switch {
	case len(rawVariable.Domain) > 0 && len(rawVariable.Values) > 0:
		return Variable{}, fmt.Errorf("%w: variable %q has both a domain and values", ErrInvalidModel, rawVariable.Name)
	case len(rawVariable.Values) > 0:
		domain = Values(rawVariable.Values...)
	default:
		intervals := make([]Interval, 0, len(rawVariable.Domain))
		for _, pair := range rawVariable.Domain {
			if len(pair) != 2 {
				return Variable{}, fmt.Errorf("%w: interval %v of variable %q is not a [lower, upper] pair", ErrInvalidModel, pair, rawVariable.Name)
			}
			intervals = append(intervals, Interval{Lower: pair[0], Upper: pair[1]})
		}
		domain = NewDomain(intervals...)
	}

	category, err := ParseCategory(rawVariable.Category)
	if err != nil {
		return Variable{}, err
	}
	needs, err := ParseRepresentation(rawVariable.Encoding)
	if err != nil {
		return Variable{}, err
	}

	return Variable{
		Name:     rawVariable.Name,
		Domain:   domain,
		Category: category,
		Needs:    needs,
	}, nil
}

func processRawConstraint(rawConstraint RawConstraint, catalog *Catalog) ([]Constraint, error) {
	operands := make([]Operand, 0, len(rawConstraint.Operands))
	for _, rawOperand := range rawConstraint.Operands {
		operand, err := parseOperand(rawOperand)
		if err != nil {
			return nil, err
		}
		if _, ok := catalog.Variable(operand.Variable); !operand.IsConstant() && !ok {
			return nil, fmt.Errorf("%w: %v refers to unknown variable %q", ErrInvalidModel, rawConstraint.Relation, operand.Variable)
		}
		operands = append(operands, operand)
	}

	if rawConstraint.Reify != "" {
		domain, ok := catalog.Domain(rawConstraint.Reify)
		if !ok {
			return nil, fmt.Errorf("%w: %v is reified by unknown variable %q", ErrInvalidModel, rawConstraint.Relation, rawConstraint.Reify)
		} else if !domain.IsBoolean() {
			return nil, fmt.Errorf("%w: %v is reified by %q whose domain %v is not {0,1}", ErrInvalidModel, rawConstraint.Relation, rawConstraint.Reify, domain)
		}
	}

	encoding, err := ParseEncoding(rawConstraint.Encoding)
	if err != nil {
		return nil, err
	}

	constraints, err := NewConstraints(rawConstraint.Relation, operands, rawConstraint.Offset, rawConstraint.Value)
	if err != nil {
		return nil, err
	}
	if len(constraints) > 1 && rawConstraint.Reify != "" {
		return nil, fmt.Errorf("%w: %v cannot be reified", ErrInvalidModel, rawConstraint.Relation)
	}

	topLevel := rawConstraint.TopLevel == nil || *rawConstraint.TopLevel
	for i := range constraints {
		if rawConstraint.Name != "" {
			constraints[i].Name = rawConstraint.Name
		}
		constraints[i].Reify = rawConstraint.Reify
		constraints[i].Encoding = encoding
		constraints[i].TopLevel = topLevel && rawConstraint.Reify == ""
	}
	return constraints, nil
}

func processRawObjective(rawObjective RawObjective, catalog *Catalog) (Objective, error) {
	var objective Objective
	switch {
	case rawObjective.Minimise != "" && rawObjective.Maximise != "":
		return Objective{}, fmt.Errorf("%w: objective cannot both minimise and maximise", ErrInvalidModel)
	case rawObjective.Minimise != "":
		objective = Objective{Variable: rawObjective.Minimise}
	case rawObjective.Maximise != "":
		objective = Objective{Variable: rawObjective.Maximise, Maximise: true}
	default:
		return Objective{}, fmt.Errorf("%w: objective without a variable", ErrInvalidModel)
	}

	if _, ok := catalog.Variable(objective.Variable); !ok {
		return Objective{}, fmt.Errorf("%w: objective on unknown variable %q", ErrInvalidModel, objective.Variable)
	}
	return objective, nil
}

func parseOperand(rawOperand any) (Operand, error) {
	switch value := rawOperand.(type) {
	case string:
		// Quoted numbers are constants too
		if constant, err := strconv.ParseInt(value, 10, 64); err == nil {
			return Const(constant), nil
		}
		return Var(value), nil
	case int:
		return Const(int64(value)), nil
	case int64:
		return Const(value), nil
	case uint64:
		if value > math.MaxInt64 {
			return Operand{}, fmt.Errorf("%w: constant %d out of range", ErrInvalidModel, value)
		}
		return Const(int64(value)), nil
	case float64:
		if value != math.Trunc(value) || math.Abs(value) > 1<<53 {
			return Operand{}, fmt.Errorf("%w: constant %v is not an integer", ErrInvalidModel, value)
		}
		return Const(int64(value)), nil
	}
	return Operand{}, fmt.Errorf("%w: operand %v of type %T is neither a variable nor an integer", ErrInvalidModel, rawOperand, rawOperand)
}
