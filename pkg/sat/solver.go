package sat

import (
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"

	"github.com/limaJavier/fdsat/internal/document"
	"github.com/samber/lo"
)

type Solver interface {
	Solve(path string) (Solution, error) // Solves the DIMACS file at path and returns a solution if satisfiable, else returns nil (these are valid outputs where error shall be nil)
}

var solverNames = []string{"gophersat", "gini", "kissat", "cadical", "minisat", "cryptominisat"}

func SolverNames() []string {
	return slices.Clone(solverNames)
}

// NewSolver builds the solver registered under name. External solvers take their binary from paths
// (the name itself is used when paths has no entry for it).
func NewSolver(name string, paths map[string]string) (Solver, error) {
	switch name {
	case "gophersat":
		return NewGophersatSolver(), nil
	case "gini":
		return NewGiniSolver(), nil
	case "kissat":
		return NewExternalSolver(name, executablePath(paths, name), "-q", "--relaxed"), nil
	case "cadical":
		return NewExternalSolver(name, executablePath(paths, name), "-q"), nil
	case "minisat":
		return NewModelFileSolver(name, executablePath(paths, name), "-verb=0"), nil
	case "cryptominisat":
		return NewExternalSolver(name, executablePath(paths, name), "--verb", "0"), nil
	}
	return nil, fmt.Errorf("unknown solver %q, allowed values are: %v", name, strings.Join(solverNames, ", "))
}

// LoadExecutablePaths reads the "solvers" section of a JSON or YAML config file
func LoadExecutablePaths(configPath string) (map[string]string, error) {
	content, err := document.Read(configPath)
	if err != nil {
		return nil, err
	}

	var config struct {
		Solvers map[string]string
	}
	if err := document.DecodeMap(lo.PickByKeys(content, []string{"solvers"}), &config); err != nil {
		return nil, err
	}
	return config.Solvers, nil
}

func executablePath(paths map[string]string, solver string) string {
	if path, ok := paths[solver]; ok && path != "" {
		return path
	}
	return solver
}

// parseSolution collects the "v" lines of a competition-style output; ok is false when there are none
func parseSolution(solverOutput string) (solution Solution, ok bool) {
	modelLines := lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
		return len(line) > 0 && line[0] == 'v'
	})
	if len(modelLines) == 0 {
		return nil, false
	}

	values := lo.Map(
		lo.Reduce(
			modelLines,
			func(values []string, line string, _ int) []string {
				return append(values, strings.Fields(line[1:])...)
			},
			[]string{},
		),
		func(valueStr string, _ int) int64 {
			value, err := strconv.ParseInt(valueStr, 10, 64)
			if err != nil {
				log.Panicf("invalid literal in solver output: %v", err)
			}
			return value
		},
	)
	// Drop the terminating 0
	return lo.Filter(values, func(value int64, _ int) bool { return value != 0 }), true
}
