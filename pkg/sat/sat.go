package sat

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Solution is the list of signed literals reported by a solver; nil stands for unsatisfiable
type Solution []int64

// ClauseWriter is the sink every encoder writes to
type ClauseWriter interface {
	// Allocates a fresh SAT variable
	NewVariable() Literal
	// Adds a disjunction applying the True/False sentinel rules
	AddClause(literals ...Literal) error
	AddComment(comment string) error
}

// Formula is an in-memory ClauseWriter
type Formula struct {
	Variables uint64
	Clauses   [][]int64
	Comments  []string
}

func NewFormula() *Formula {
	return &Formula{Clauses: [][]int64{}}
}

func (formula *Formula) NewVariable() Literal {
	formula.Variables++
	return Literal(formula.Variables)
}

func (formula *Formula) AddClause(literals ...Literal) error {
	clause, ok := normalize(nil, literals)
	if !ok {
		return nil
	}
	formula.Clauses = append(formula.Clauses, lo.Map(clause, func(literal Literal, _ int) int64 { return int64(literal) }))
	return nil
}

func (formula *Formula) AddComment(comment string) error {
	formula.Comments = append(formula.Comments, comment)
	return nil
}

func (formula *Formula) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", formula.Variables, len(formula.Clauses))
	for _, clause := range formula.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}

// Satisfies checks the solution assigns consistently and satisfies every clause
func (formula *Formula) Satisfies(solution Solution) bool {
	literals := make(map[int64]bool)
	for _, literal := range solution {
		if literals[-literal] {
			return false
		}
		literals[literal] = true
	}

	return lo.EveryBy(formula.Clauses, func(clause []int64) bool {
		return lo.SomeBy(clause, func(literal int64) bool { return literals[literal] })
	})
}
