package main

import (
	"fmt"

	"github.com/limaJavier/fdsat/pkg/encoding"
	"github.com/limaJavier/fdsat/pkg/model"
	"github.com/spf13/cobra"
)

func encodeCmd() *cobra.Command {
	var (
		options encodeOptions
		out     string
		maxsat  bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Write the CNF (or weighted CNF) instance of a model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := options.resolve(cmd)
			if err != nil {
				return err
			}
			config.Weighted = config.Weighted || maxsat
			if err := config.Validate(); err != nil {
				return err
			}

			m, err := model.ModelFromFile(options.model)
			if err != nil {
				return fmt.Errorf("cannot parse model file: %w", err)
			}

			translation, err := encoding.Translate(encoding.ProblemFromModel(m), config, out)
			if err != nil {
				return fmt.Errorf("an error occurred during translation: %w", err)
			}

			fmt.Printf("Variables: %v\n", translation.Variables())
			fmt.Printf("Clauses: %v\n", translation.Clauses())
			return nil
		},
	}

	options.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Path to the output instance (required)")
	cmd.Flags().BoolVar(&maxsat, "maxsat", false, "Write a weighted instance carrying the preferences as soft clauses")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
