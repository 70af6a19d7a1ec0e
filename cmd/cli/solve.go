package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/limaJavier/fdsat/internal/logger"
	"github.com/limaJavier/fdsat/pkg/encoding"
	"github.com/limaJavier/fdsat/pkg/model"
	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func solveCmd() *cobra.Command {
	var (
		options    encodeOptions
		solverName string
		out        string
		instance   string
		all        bool
		noOptimise bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Encode a model, solve it and print the values of its decision variables as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := options.resolve(cmd)
			if err != nil {
				return err
			}
			if config.Weighted {
				logger.L().Warn("solve.weighted.disabled", "reason", "solvers read plain CNF")
				config.Weighted = false
			}

			paths, err := options.solverPaths()
			if err != nil {
				return fmt.Errorf("cannot read solver paths: %w", err)
			}
			solver, err := sat.NewSolver(solverName, paths)
			if err != nil {
				return err
			}

			m, err := model.ModelFromFile(options.model)
			if err != nil {
				return fmt.Errorf("cannot parse model file: %w", err)
			}

			path := instance
			if path == "" {
				directory, err := os.MkdirTemp("", "fdsat-")
				if err != nil {
					return fmt.Errorf("cannot create temporary directory: %w", err)
				}
				defer os.RemoveAll(directory)
				path = filepath.Join(directory, "instance.cnf")
			}

			translation, err := encoding.Translate(encoding.ProblemFromModel(m), config, path)
			if err != nil {
				return fmt.Errorf("an error occurred during translation: %w", err)
			}

			var assignment map[string]int64
			if m.Objective != nil && !noOptimise {
				assignment, err = translation.Optimize(solver, *m.Objective)
			} else {
				var solution sat.Solution
				solution, err = solver.Solve(translation.Path())
				assignment = translation.Decode(solution)
			}
			if err != nil {
				return fmt.Errorf("an error occurred while solving: %w", err)
			}

			defer func() {
				fmt.Printf("Variables: %v\n", translation.Variables())
				fmt.Printf("Clauses: %v\n", translation.Clauses())
			}()

			if assignment == nil {
				exitCode = exitUnsatisfiable
				return nil
			}

			// Verify the decoded assignment against the model
			if violated, found := m.Check(assignment); found {
				logger.L().Error("solve.verification.failed", "constraint", violated.String())
				exitCode = exitUnverified
				return nil
			}

			if !all {
				assignment = lo.PickBy(assignment, func(name string, _ int64) bool {
					category, _ := m.Catalog.Category(name)
					return category == model.Decision
				})
			}

			assignmentJson, err := json.Marshal(assignment)
			if err != nil {
				return fmt.Errorf("an error occurred while building output json: %w", err)
			}

			// Verify outfile is empty, if so then write the results to the Standard Output
			if out == "" {
				fmt.Println(string(assignmentJson))
			} else if err := os.WriteFile(out, assignmentJson, 0666); err != nil {
				return fmt.Errorf("an error occurred while writing to the output file: %w", err)
			}

			exitCode = exitSatisfiable
			return nil
		},
	}

	options.bind(cmd)
	cmd.Flags().StringVarP(&solverName, "solver", "s", "gophersat", fmt.Sprintf("SAT solver to use, one of: %v", sat.SolverNames()))
	cmd.Flags().StringVarP(&out, "out", "o", "", "Path to the file where the assignment will be written; if empty, it'll be written into the Standard Output")
	cmd.Flags().StringVar(&instance, "cnf", "", "Keep the instance at this path instead of a temporary file")
	cmd.Flags().BoolVar(&all, "all", false, "Print auxiliary variables too")
	cmd.Flags().BoolVar(&noOptimise, "no-optimise", false, "Stop at the first solution even when the model has an objective")
	return cmd
}
