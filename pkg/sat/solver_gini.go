package sat

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// giniSolver solves in process with github.com/go-air/gini
type giniSolver struct{}

func NewGiniSolver() Solver {
	return &giniSolver{}
}

func (*giniSolver) Solve(path string) (Solution, error) {
	formula, err := LoadFormula(path)
	if err != nil {
		return nil, err
	}

	g := gini.NewV(int(formula.Variables))
	var used int64
	for _, clause := range formula.Clauses {
		for _, literal := range clause {
			used = max(used, literal, -literal)
			g.Add(z.Dimacs2Lit(int(literal)))
		}
		g.Add(z.LitNull)
	}

	if g.Solve() != 1 {
		return nil, nil
	}

	model := make([]bool, used)
	for variable := int64(1); variable <= used; variable++ {
		model[variable-1] = g.Value(z.Dimacs2Lit(int(variable)))
	}
	return solutionFromModel(formula.Variables, model), nil
}
