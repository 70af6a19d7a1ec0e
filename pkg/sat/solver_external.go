package sat

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// externalSolver runs a competition-style binary that takes the DIMACS file as its last argument.
// With modelFile set, a second argument names the file the binary writes its model to (minisat style).
type externalSolver struct {
	name      string
	path      string
	args      []string
	modelFile bool
}

func NewExternalSolver(name, path string, args ...string) Solver {
	return &externalSolver{name: name, path: path, args: args}
}

// NewModelFileSolver builds a runner for binaries that write "SAT" and the model to an output file
func NewModelFileSolver(name, path string, args ...string) Solver {
	return &externalSolver{name: name, path: path, args: args, modelFile: true}
}

func (solver *externalSolver) Solve(path string) (Solution, error) {
	args := append(append([]string{}, solver.args...), path)

	var modelPath string
	if solver.modelFile {
		modelTempFile, err := os.CreateTemp("", solver.name+"-model-*.txt")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary file: %v", err)
		}
		modelPath = modelTempFile.Name()
		modelTempFile.Close()
		defer os.Remove(modelPath)
		args = append(args, modelPath)
	}

	cmd := exec.Command(solver.path, args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cmd.ProcessState == nil {
		return nil, fmt.Errorf("cannot start %v: %w", solver.name, err)
	}
	// Exit-code of 10 stands for satisfiable and exit-code 20 stands for unsatisfiable
	if err != nil && cmd.ProcessState.ExitCode() != 10 && cmd.ProcessState.ExitCode() != 20 {
		return nil, fmt.Errorf("an error occurred during %v execution: %v : %v", solver.name, err.Error(), stderr.String())
	} else if cmd.ProcessState.ExitCode() == 20 {
		return nil, nil
	}

	if !solver.modelFile {
		solution, ok := parseSolution(stdOut.String())
		if !ok {
			return nil, fmt.Errorf("%w: %v printed no model lines", ErrMissingModel, solver.name)
		}
		return solution, nil
	}

	output, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %v", err)
	}
	solution, satisfiable, err := parseModelFile(string(output))
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrMissingModel, solver.name, err)
	} else if !satisfiable {
		return nil, nil
	}
	return solution, nil
}

// parseModelFile reads a "SAT" line followed by the model, or a lone "UNSAT" line
func parseModelFile(output string) (Solution, bool, error) {
	lines := lo.Filter(strings.Split(output, "\n"), func(line string, _ int) bool { return strings.TrimSpace(line) != "" })
	if len(lines) == 0 {
		return nil, false, fmt.Errorf("empty model file")
	}

	switch strings.TrimSpace(lines[0]) {
	case "UNSAT":
		return nil, false, nil
	case "SAT":
	default:
		return nil, false, fmt.Errorf("unexpected status line %q", lines[0])
	}

	solution := Solution{}
	terminated := false
	for _, field := range strings.Fields(strings.Join(lines[1:], " ")) {
		value, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("invalid literal %q", field)
		}
		if value == 0 {
			terminated = true
			break
		}
		solution = append(solution, value)
	}
	if !terminated {
		return nil, false, fmt.Errorf("model is not terminated by 0")
	}
	return solution, true, nil
}
