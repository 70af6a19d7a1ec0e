package sat

import (
	"github.com/crillab/gophersat/solver"
	"github.com/samber/lo"
)

// gophersatSolver solves in process with the CDCL solver of github.com/crillab/gophersat
type gophersatSolver struct{}

func NewGophersatSolver() Solver {
	return &gophersatSolver{}
}

func (*gophersatSolver) Solve(path string) (Solution, error) {
	formula, err := LoadFormula(path)
	if err != nil {
		return nil, err
	}
	return formula.Solve(), nil
}

// Solve runs gophersat on the in-memory formula and returns nil when it is unsatisfiable
func (formula *Formula) Solve() Solution {
	if len(formula.Clauses) == 0 {
		return solutionFromModel(formula.Variables, nil)
	} else if lo.ContainsBy(formula.Clauses, func(clause []int64) bool { return len(clause) == 0 }) {
		return nil
	}

	cnf := lo.Map(formula.Clauses, func(clause []int64, _ int) []int {
		return lo.Map(clause, func(literal int64, _ int) int { return int(literal) })
	})

	s := solver.New(solver.ParseSlice(cnf))
	if s.Solve() != solver.Sat {
		return nil
	}
	return solutionFromModel(formula.Variables, s.Model())
}

// solutionFromModel signs every declared variable; the ones the model does not cover are false
func solutionFromModel(variables uint64, model []bool) Solution {
	solution := make(Solution, 0, variables)
	for variable := int64(1); uint64(variable) <= variables; variable++ {
		if int(variable) <= len(model) && model[variable-1] {
			solution = append(solution, variable)
		} else {
			solution = append(solution, -variable)
		}
	}
	return solution
}
