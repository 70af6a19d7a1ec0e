package encoding

import (
	"testing"

	"github.com/limaJavier/fdsat/pkg/model"
	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relation(t *testing.T, name string, offset, value int64, operands ...model.Operand) model.Constraint {
	t.Helper()
	constraints, err := model.NewConstraints(name, operands, offset, value)
	require.NoError(t, err)
	require.Len(t, constraints, 1)
	constraints[0].TopLevel = true
	return constraints[0]
}

func reified(constraint model.Constraint, variable string) model.Constraint {
	constraint.Reify = variable
	constraint.TopLevel = false
	return constraint
}

func withEncoding(constraint model.Constraint, encoding model.Encoding) model.Constraint {
	constraint.Encoding = encoding
	return constraint
}

// assignments enumerates every assignment of the variables over their domains
func assignments(variables []model.Variable) []map[string]int64 {
	result := []map[string]int64{{}}
	for _, variable := range variables {
		next := make([]map[string]int64, 0, len(result)*int(variable.Domain.Size()))
		for _, partial := range result {
			for _, value := range variable.Domain.Values() {
				assignment := make(map[string]int64, len(partial)+1)
				for name, previous := range partial {
					assignment[name] = previous
				}
				assignment[variable.Name] = value
				next = append(next, assignment)
			}
		}
		result = next
	}
	return result
}

// encodeConstraint encodes the variables and the constraint into a formula and returns it with the
// mapping and the number of SAT variables owned by the domain variables
func encodeConstraint(t *testing.T, config Config, variables []model.Variable, constraint model.Constraint) (*sat.Formula, *Mapping, uint64, error) {
	t.Helper()

	catalog, err := model.NewCatalog(variables...)
	require.NoError(t, err)

	formula := sat.NewFormula()
	mapping := NewMapping()
	cardinality := NewCardinalityEncoder(formula, config)
	encoder := NewVariableEncoder(formula, mapping, cardinality, config)

	needs := Needs(constraint)
	for _, variable := range variables {
		_, err := encoder.Encode(variable, needs[variable.Name], true)
		require.NoError(t, err)
	}
	owned := formula.Variables

	err = NewConstraintEncoder(formula, mapping, cardinality, catalog).Encode(constraint)
	return formula, mapping, owned, err
}

// assertSemantics checks that the models of the encoding, projected on the domain variables, are
// exactly the assignments satisfying the constraint
func assertSemantics(t *testing.T, config Config, variables []model.Variable, constraint model.Constraint) {
	t.Helper()

	// Arrange
	expected := lo.CountBy(assignments(variables), constraint.Check)

	// Act
	formula, mapping, owned, err := encodeConstraint(t, config, variables, constraint)

	// Assert
	require.NoError(t, err)
	literals := lo.Times(int(owned), func(i int) sat.Literal { return sat.Literal(i + 1) })
	models := projections(t, formula, literals)
	assert.Len(t, models, expected, constraint.String())

	for _, projection := range models {
		solution := lo.Map(projection, func(value bool, i int) int64 {
			if value {
				return int64(i + 1)
			}
			return -int64(i + 1)
		})
		assignment := mapping.Decode(solution)
		assert.True(t, constraint.Check(assignment), "%v violated by %v", constraint, assignment)
	}
}

func pairwiseConfig() Config {
	config := DefaultConfig()
	config.Scheme = Pairwise
	return config
}

func TestConstraintEncoder(t *testing.T) {
	x := model.Variable{Name: "x", Domain: model.Range(0, 3)}
	y := model.Variable{Name: "y", Domain: model.NewDomain(model.Interval{Lower: 0, Upper: 1}, model.Interval{Lower: 3, Upper: 4})}
	z := model.Variable{Name: "z", Domain: model.Range(0, 4)}
	booleans := lo.Map([]string{"a", "b", "c", "d", "e", "f", "g"}, func(name string, _ int) model.Variable {
		return model.Variable{Name: name, Domain: model.Boolean()}
	})
	a, b, c, d := booleans[0], booleans[1], booleans[2], booleans[3]

	t.Run("Unary", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{x}, relation(t, "ne", 2, 0, model.Var("x")))
	})

	t.Run("Binary against a constant", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{x}, relation(t, "le", 0, 0, model.Var("x"), model.Const(2)))
		assertSemantics(t, pairwiseConfig(), []model.Variable{x}, relation(t, "gt", 0, 0, model.Const(2), model.Var("x")))
	})

	t.Run("Binary support", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y}, relation(t, "lt", 1, 0, model.Var("x"), model.Var("y")))
	})

	t.Run("Binary direct", func(t *testing.T) {
		constraint := withEncoding(relation(t, "ne", 0, 0, model.Var("x"), model.Var("y")), model.EncodingDirect)
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y}, constraint)
	})

	t.Run("Reified support", func(t *testing.T) {
		constraint := reified(relation(t, "ge", 0, 0, model.Var("x"), model.Var("y")), "b")
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y, b}, constraint)
	})

	t.Run("Reified direct", func(t *testing.T) {
		constraint := reified(withEncoding(relation(t, "eq", -1, 0, model.Var("x"), model.Var("y")), model.EncodingDirect), "b")
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y, b}, constraint)
	})

	t.Run("Reified unary", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, b}, reified(relation(t, "lt", 2, 0, model.Var("x")), "b"))
	})

	t.Run("Functional", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y, z}, relation(t, "plus", 0, 0, model.Var("x"), model.Var("y"), model.Var("z")))
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y, z}, relation(t, "absdiff", 0, 0, model.Var("x"), model.Var("y"), model.Var("z")))
	})

	t.Run("Functional with an undefined value", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y, z}, relation(t, "div", 0, 0, model.Var("z"), model.Var("y"), model.Var("x")))
	})

	t.Run("Functional with a constant result", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y}, relation(t, "plus", 0, 0, model.Var("x"), model.Var("y"), model.Const(4)))
	})

	t.Run("Reified functional", func(t *testing.T) {
		constraint := reified(relation(t, "max", 0, 0, model.Var("x"), model.Var("y"), model.Var("z")), "b")
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y, z, b}, constraint)
	})

	t.Run("Ternary relation", func(t *testing.T) {
		sumBelow := model.Constraint{
			Name:     "x + y < z",
			Kind:     model.Relation,
			Operands: []model.Operand{model.Var("x"), model.Var("y"), model.Var("z")},
			Test:     func(values ...int64) bool { return values[0]+values[1] < values[2] },
			TopLevel: true,
		}
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y, z}, sumBelow)

		sumBelow.Operands[2] = model.Const(3)
		assertSemantics(t, pairwiseConfig(), []model.Variable{x, y}, sumBelow)
	})

	t.Run("Bounds", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{z}, relation(t, "atmost", 0, 2, model.Var("z")))
		assertSemantics(t, pairwiseConfig(), []model.Variable{z}, relation(t, "atleast", 0, 3, model.Var("z")))
		assertSemantics(t, pairwiseConfig(), []model.Variable{y}, relation(t, "atmost", 0, 2, model.Var("y")))
		assertSemantics(t, pairwiseConfig(), []model.Variable{z}, relation(t, "atleast", 0, 7, model.Var("z")))
	})

	t.Run("Reified bounds", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{z, b}, reified(relation(t, "atmost", 0, 1, model.Var("z")), "b"))
		assertSemantics(t, pairwiseConfig(), []model.Variable{y, b}, reified(relation(t, "atleast", 0, 2, model.Var("y")), "b"))
	})

	t.Run("Cardinality with every scheme", func(t *testing.T) {
		operands := lo.Map(booleans, func(variable model.Variable, _ int) model.Operand { return model.Var(variable.Name) })
		for _, scheme := range Schemes() {
			config := DefaultConfig()
			config.Scheme = scheme
			assertSemantics(t, config, booleans, relation(t, "exactlyone", 0, 0, operands...))
			assertSemantics(t, config, booleans, relation(t, "atmostone", 0, 0, operands...))
		}
	})

	t.Run("Cardinality over wider domains counts the value 1", func(t *testing.T) {
		constraint := relation(t, "atmostone", 0, 0, model.Var("x"), model.Var("y"), model.Var("a"))
		assertSemantics(t, DefaultConfig(), []model.Variable{x, y, a}, constraint)
	})

	t.Run("Disjunction", func(t *testing.T) {
		assertSemantics(t, pairwiseConfig(), []model.Variable{a, b, c}, relation(t, "or", 0, 0, model.Var("a"), model.Var("b"), model.Var("c")))
		assertSemantics(t, pairwiseConfig(), []model.Variable{a, b, c, d}, reified(relation(t, "or", 0, 0, model.Var("a"), model.Var("b"), model.Var("c")), "d"))
	})

	t.Run("Ineligible cardinality falls back", func(t *testing.T) {
		// Arrange
		constraint := relation(t, "exactlyone", 0, 0, model.Var("a"), model.Var("b"), model.Var("c"), model.Var("d"), model.Var("e"), model.Var("f"), model.Var("g"))
		constraint.TopLevel = false

		// Act
		formula, _, owned, err := encodeConstraint(t, DefaultConfig(), booleans, constraint)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, owned, formula.Variables)
		assert.Len(t, formula.Clauses, 21+1)
	})

	t.Run("Reified cardinality", func(t *testing.T) {
		// Act
		_, _, _, err := encodeConstraint(t, DefaultConfig(), []model.Variable{a, b, c}, reified(relation(t, "exactlyone", 0, 0, model.Var("a"), model.Var("b")), "c"))

		// Assert
		assert.ErrorIs(t, err, ErrUnsupportedConstraint)
	})

	t.Run("Missing representation", func(t *testing.T) {
		// Arrange
		catalog, err := model.NewCatalog(z)
		require.NoError(t, err)
		formula := sat.NewFormula()
		mapping := NewMapping()
		cardinality := NewCardinalityEncoder(formula, DefaultConfig())
		_, err = NewVariableEncoder(formula, mapping, cardinality, DefaultConfig()).Encode(z, model.OrderRepresentation, true)
		require.NoError(t, err)

		// Act
		err = NewConstraintEncoder(formula, mapping, cardinality, catalog).Encode(relation(t, "ne", 0, 1, model.Var("z")))

		// Assert
		assert.ErrorIs(t, err, ErrUnsupportedConstraint)
	})

	t.Run("Unknown variable", func(t *testing.T) {
		// Arrange
		catalog, err := model.NewCatalog(x)
		require.NoError(t, err)
		formula := sat.NewFormula()
		encoder := NewConstraintEncoder(formula, NewMapping(), NewCardinalityEncoder(formula, DefaultConfig()), catalog)

		// Act
		err = encoder.Encode(relation(t, "lt", 0, 0, model.Var("x"), model.Var("w")))

		// Assert
		assert.ErrorIs(t, err, ErrUnknownVariable)
	})
}

func TestNeeds(t *testing.T) {
	// Arrange
	lt := reified(relation(t, "lt", 0, 0, model.Var("x"), model.Const(3)), "b")
	atMost := relation(t, "atmost", 0, 4, model.Var("x"))

	// Act & Assert
	assert.Equal(t, map[string]model.Representation{"x": model.DirectRepresentation, "b": model.DirectRepresentation}, Needs(lt))
	assert.Equal(t, map[string]model.Representation{"x": model.OrderRepresentation}, Needs(atMost))
}
