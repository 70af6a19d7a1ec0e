package encoding

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/limaJavier/fdsat/internal/logger"
	"github.com/limaJavier/fdsat/pkg/model"
	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/samber/lo"
)

// Problem is everything the translator reads from the host model
type Problem struct {
	Catalog     model.VariableCatalog
	Constraints []model.Constraint
	Preferences []model.Preference
	Objective   *model.Objective
}

func ProblemFromModel(m model.Model) Problem {
	return Problem{
		Catalog:     m.Catalog,
		Constraints: m.Constraints,
		Preferences: m.Preferences,
		Objective:   m.Objective,
	}
}

// Translation is a finalized instance together with the tables that decode its solutions
type Translation struct {
	sink    *sat.ClauseSink
	mapping *Mapping
	shapes  map[string]Shape
}

func (translation *Translation) Path() string { return translation.sink.Path() }
func (translation *Translation) Variables() uint64 { return translation.sink.Variables() }
func (translation *Translation) Clauses() uint64 { return translation.sink.Clauses() }
func (translation *Translation) Mapping() *Mapping { return translation.mapping }
func (translation *Translation) Weighted() bool { return translation.sink.Weighted() }
func (translation *Translation) Shape(name string) Shape { return translation.shapes[name] }

// Decode returns the value of every encoded variable; nil solutions decode to nil
func (translation *Translation) Decode(solution sat.Solution) map[string]int64 {
	if solution == nil {
		return nil
	}
	return translation.mapping.Decode(solution)
}

// Translate writes the instance of the problem to path. On failure the file is removed.
func Translate(problem Problem, config Config, path string) (*Translation, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := validate(problem); err != nil {
		return nil, err
	}

	start := time.Now()
	needs, constrained := requirements(problem)

	sink, err := sat.Open(path, sat.Options{
		ClauseLimit: config.CNFLimit,
		Weighted:    config.Weighted,
		Top:         config.Top,
	})
	if err != nil {
		return nil, err
	}

	translation := &Translation{sink: sink, mapping: NewMapping()}
	if err := translation.encode(problem, config, needs, constrained); err != nil {
		if abortErr := sink.Abort(); abortErr != nil {
			err = errors.Join(err, abortErr)
		}
		logger.L().Error("translation.failed", "path", path, "error", err)
		return nil, err
	}

	logger.L().Info("translation.finished",
		"path", path,
		"variables", sink.Variables(),
		"clauses", sink.Clauses(),
		"elapsed", time.Since(start).String(),
	)
	return translation, nil
}

func (translation *Translation) encode(problem Problem, config Config, needs map[string]model.Representation, constrained map[string]bool) error {
	sink := translation.sink
	cardinality := NewCardinalityEncoder(sink, config)
	variables := NewVariableEncoder(sink, translation.mapping, cardinality, config)
	constraints := NewConstraintEncoder(sink, translation.mapping, cardinality, problem.Catalog)

	names := problem.Catalog.Names()
	logger.L().Info("translation.variables", "count", len(names), "scheme", string(config.Scheme))
	for _, name := range names {
		domain, _ := problem.Catalog.Domain(name)
		category, _ := problem.Catalog.Category(name)
		variable := model.Variable{
			Name:     name,
			Domain:   domain,
			Category: category,
			Needs:    problem.Catalog.Needs(name),
		}
		if _, err := variables.Encode(variable, needs[name], constrained[name]); err != nil {
			return fmt.Errorf("cannot encode variable %q: %w", name, err)
		}
	}
	translation.shapes = variables.shapes

	logger.L().Info("translation.constraints", "count", len(problem.Constraints))
	for _, constraint := range problem.Constraints {
		if err := sink.AddComment(fmt.Sprintf("Encoding constraint: %v", constraint)); err != nil {
			return err
		}
		if err := constraints.Encode(constraint); err != nil {
			return fmt.Errorf("cannot encode constraint %v: %w", constraint, err)
		}
	}

	if len(problem.Preferences) > 0 {
		if config.Weighted {
			for _, preference := range problem.Preferences {
				literal := translation.mapping.Direct(preference.Variable, preference.Value)
				if err := sink.AddSoftClause(literal, preference.Weight); err != nil {
					return fmt.Errorf("cannot encode preference on %q: %w", preference.Variable, err)
				}
			}
		} else {
			logger.L().Warn("translation.preferences.ignored", "count", len(problem.Preferences), "reason", "weighted mode is off")
		}
	}

	return sink.Finalize()
}

func validate(problem Problem) error {
	if problem.Catalog == nil {
		return fmt.Errorf("%w: no variable catalog", ErrUnknownVariable)
	}
	known := func(name string) bool {
		_, ok := problem.Catalog.Domain(name)
		return ok
	}

	for _, constraint := range problem.Constraints {
		if err := constraint.Validate(); err != nil {
			return err
		}
		if name, ok := lo.Find(constraint.Variables(), func(name string) bool { return !known(name) }); ok {
			return fmt.Errorf("%w %q in %v", ErrUnknownVariable, name, constraint)
		}
	}
	for _, preference := range problem.Preferences {
		if !known(preference.Variable) {
			return fmt.Errorf("%w %q in preference", ErrUnknownVariable, preference.Variable)
		}
	}
	if problem.Objective != nil && !known(problem.Objective.Variable) {
		return fmt.Errorf("%w %q in objective", ErrUnknownVariable, problem.Objective.Variable)
	}
	return nil
}

// requirements collects the representations each variable needs and which variables are
// mentioned by a constraint or a preference
func requirements(problem Problem) (map[string]model.Representation, map[string]bool) {
	needs := make(map[string]model.Representation)
	constrained := make(map[string]bool)

	for _, constraint := range problem.Constraints {
		for name, representation := range Needs(constraint) {
			needs[name] |= representation
		}
		for _, name := range constraint.Variables() {
			constrained[name] = true
		}
	}
	for _, preference := range problem.Preferences {
		needs[preference.Variable] |= model.DirectRepresentation
		constrained[preference.Variable] = true
	}
	if problem.Objective != nil {
		needs[problem.Objective.Variable] |= model.OrderRepresentation
		constrained[problem.Objective.Variable] = true
	}
	return needs, constrained
}

// Optimize solves the instance repeatedly, each time appending a unit clause that asks for a better
// value of the objective, until the solver reports unsatisfiable. It returns the best assignment
// found (nil when the instance itself is unsatisfiable); the instance on disk is left as translated.
func (translation *Translation) Optimize(solver sat.Solver, objective model.Objective) (map[string]int64, error) {
	if translation.Weighted() {
		return nil, fmt.Errorf("%w: optimisation runs on plain CNF instances", ErrInvalidConfig)
	} else if !translation.mapping.Has(objective.Variable, model.OrderRepresentation) {
		return nil, fmt.Errorf("%w: objective %q has no order literals", ErrUnsupportedConstraint, objective.Variable)
	}

	var (
		best      map[string]int64
		bound     *sat.Checkpoint
		iteration int
	)
	for {
		iteration++
		solution, err := solver.Solve(translation.Path())
		if err != nil {
			return nil, err
		}
		if solution == nil {
			break
		}

		best = translation.Decode(solution)
		value := best[objective.Variable]
		logger.L().Info("optimisation.improved", "variable", objective.Variable, "value", value, "iteration", iteration)

		var literal sat.Literal
		switch {
		case objective.Maximise && value == math.MaxInt64, !objective.Maximise && value == math.MinInt64:
			literal = sat.False
		case objective.Maximise:
			literal = -translation.mapping.Order(objective.Variable, value)
		default:
			literal = translation.mapping.Order(objective.Variable, value-1)
		}

		if bound != nil {
			if err := translation.sink.RemoveClausesAfterFinalize(*bound); err != nil {
				return nil, err
			}
		}
		checkpoint, err := translation.sink.AddClausesAfterFinalize([]sat.Literal{literal})
		if err != nil {
			return nil, err
		}
		bound = &checkpoint
	}

	if bound != nil {
		if err := translation.sink.RemoveClausesAfterFinalize(*bound); err != nil {
			return nil, err
		}
	}
	return best, nil
}
