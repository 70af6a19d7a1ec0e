package encoding

import (
	"slices"
	"testing"

	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const maxEnumeratedModels = 4096

// projections enumerates the distinct assignments the formula allows on the given literals
func projections(t *testing.T, formula *sat.Formula, literals []sat.Literal) [][]bool {
	t.Helper()

	search := &sat.Formula{Variables: formula.Variables, Clauses: slices.Clone(formula.Clauses)}
	found := [][]bool{}
	for range maxEnumeratedModels {
		solution := search.Solve()
		if solution == nil {
			return found
		}

		truth := truthOf(solution)
		projection := lo.Map(literals, func(literal sat.Literal, _ int) bool { return truth[literal] })
		found = append(found, projection)

		blocking := lo.Map(literals, func(literal sat.Literal, i int) sat.Literal {
			if projection[i] {
				return -literal
			}
			return literal
		})
		require.NoError(t, search.AddClause(blocking...))
	}
	require.FailNow(t, "too many models")
	return nil
}

func truthOf(solution sat.Solution) map[sat.Literal]bool {
	truth := make(map[sat.Literal]bool, len(solution))
	for _, literal := range solution {
		truth[sat.Literal(literal)] = true
	}
	return truth
}

func freshLiterals(formula *sat.Formula, n int) []sat.Literal {
	return lo.Times(n, func(_ int) sat.Literal { return formula.NewVariable() })
}
