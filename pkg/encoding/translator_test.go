package encoding

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/limaJavier/fdsat/pkg/model"
	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadProblem(t *testing.T) (model.Model, Problem) {
	t.Helper()
	m, err := model.ModelFromFile("testdata/problem.yaml")
	require.NoError(t, err)
	return m, ProblemFromModel(m)
}

func outputPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "problem.cnf")
}

func TestTranslate(t *testing.T) {
	t.Run("Solutions decode to satisfying assignments", func(t *testing.T) {
		// Arrange
		m, problem := loadProblem(t)
		path := outputPath(t)

		// Act
		translation, err := Translate(problem, DefaultConfig(), path)
		require.NoError(t, err)
		solution, solveErr := sat.NewGophersatSolver().Solve(path)

		// Assert
		require.NoError(t, solveErr)
		require.NotNil(t, solution)
		assignment := translation.Decode(solution)
		assert.Len(t, assignment, 6)
		violated, found := m.Check(assignment)
		assert.False(t, found, "%v violated by %v", violated, assignment)

		assert.Equal(t, Hybrid, translation.Shape("x"))
		assert.Equal(t, Hybrid, translation.Shape("y"))
		assert.Equal(t, Hybrid, translation.Shape("z"))
		assert.Equal(t, Boolean, translation.Shape("u"))

		formula, err := sat.LoadFormula(path)
		require.NoError(t, err)
		assert.Equal(t, translation.Variables(), formula.Variables)
		assert.Equal(t, translation.Clauses(), uint64(len(formula.Clauses)))
		assert.True(t, formula.Satisfies(solution))
	})

	t.Run("Weighted instance carries the preferences", func(t *testing.T) {
		// Arrange
		_, problem := loadProblem(t)
		path := outputPath(t)
		config := DefaultConfig()
		config.Weighted = true

		// Act
		translation, err := Translate(problem, config, path)

		// Assert
		require.NoError(t, err)
		bytes, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(bytes)), "\n")

		header := strings.Fields(lines[0])
		assert.Equal(t, []string{"p", "wcnf"}, header[:2])
		assert.Equal(t, "1000000000", header[4])

		preference := translation.Mapping().Direct("x", 7)
		assert.Equal(t, "5 "+preference.String()+" 0", lines[len(lines)-1])
		for _, line := range lines[1 : len(lines)-1] {
			if !strings.HasPrefix(line, "c ") {
				assert.True(t, strings.HasPrefix(line, "1000000000 "), line)
			}
		}
	})

	t.Run("Maximise", func(t *testing.T) {
		// Arrange
		m, problem := loadProblem(t)
		path := outputPath(t)
		translation, err := Translate(problem, DefaultConfig(), path)
		require.NoError(t, err)
		clauses := translation.Clauses()

		// Act
		best, err := translation.Optimize(sat.NewGophersatSolver(), *problem.Objective)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(15), best["z"])
		_, found := m.Check(best)
		assert.False(t, found)
		assert.Equal(t, clauses, translation.Clauses())

		formula, err := sat.LoadFormula(path)
		require.NoError(t, err)
		assert.Equal(t, clauses, uint64(len(formula.Clauses)))
	})

	t.Run("Minimise", func(t *testing.T) {
		// Arrange
		_, problem := loadProblem(t)
		translation, err := Translate(problem, DefaultConfig(), outputPath(t))
		require.NoError(t, err)

		// Act
		best, err := translation.Optimize(sat.NewGophersatSolver(), model.Objective{Variable: "y"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(2), best["y"])
	})

	t.Run("Optimising without order literals", func(t *testing.T) {
		// Arrange
		_, problem := loadProblem(t)
		translation, err := Translate(problem, DefaultConfig(), outputPath(t))
		require.NoError(t, err)

		// Act
		_, err = translation.Optimize(sat.NewGophersatSolver(), model.Objective{Variable: "nothing"})

		// Assert
		assert.ErrorIs(t, err, ErrUnsupportedConstraint)
	})

	t.Run("Unsatisfiable problem", func(t *testing.T) {
		// Arrange
		catalog, err := model.NewCatalog(model.Variable{Name: "x", Domain: model.Range(0, 5)})
		require.NoError(t, err)
		atMost, _ := model.NewConstraints("atmost", []model.Operand{model.Var("x")}, 0, 1)
		atLeast, _ := model.NewConstraints("atleast", []model.Operand{model.Var("x")}, 0, 2)
		path := outputPath(t)

		// Act
		translation, err := Translate(Problem{Catalog: catalog, Constraints: append(atMost, atLeast...)}, DefaultConfig(), path)
		require.NoError(t, err)
		solution, solveErr := sat.NewGophersatSolver().Solve(path)

		// Assert
		require.NoError(t, solveErr)
		assert.Nil(t, solution)
		assert.Nil(t, translation.Decode(solution))
		assert.Equal(t, OrderOnly, translation.Shape("x"))
	})

	t.Run("Clause limit removes the output", func(t *testing.T) {
		// Arrange
		_, problem := loadProblem(t)
		path := outputPath(t)
		config := DefaultConfig()
		config.CNFLimit = 5

		// Act
		translation, err := Translate(problem, config, path)

		// Assert
		assert.ErrorIs(t, err, sat.ErrClauseLimitExceeded)
		assert.Nil(t, translation)
		assert.NoFileExists(t, path)
	})

	t.Run("Unknown variable", func(t *testing.T) {
		// Arrange
		_, problem := loadProblem(t)
		path := outputPath(t)
		problem.Constraints = append(problem.Constraints, model.Constraint{Kind: model.Disjunction, Operands: []model.Operand{model.Var("w")}})

		// Act
		_, err := Translate(problem, DefaultConfig(), path)

		// Assert
		assert.ErrorIs(t, err, ErrUnknownVariable)
		assert.NoFileExists(t, path)
	})

	t.Run("Invalid configuration", func(t *testing.T) {
		// Arrange
		_, problem := loadProblem(t)
		path := outputPath(t)
		config := DefaultConfig()
		config.Scheme = "binary"

		// Act
		_, err := Translate(problem, config, path)

		// Assert
		assert.ErrorIs(t, err, ErrUnknownScheme)
		assert.NoFileExists(t, path)
	})
}
