package main

import (
	"os"
	"path/filepath"

	"github.com/limaJavier/fdsat/pkg/encoding"
	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var configFileNames = []string{"config.yaml", "config.yml", "config.json"}

// encodeOptions are the flags shared by every command that translates a model
type encodeOptions struct {
	model    string
	config   string
	scheme   string
	cnfLimit uint64
	both     bool
	mapping  bool
}

func (options *encodeOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&options.model, "model", "m", "", "Path to the YAML or JSON model (required)")
	flags.StringVarP(&options.config, "config", "c", "", "Path to the YAML or JSON configuration; if empty, a config file next to the executable is used when present")
	flags.StringVar(&options.scheme, "scheme", "", "At-most-one scheme: pairwise, ladder, product, bimander or commander")
	flags.Uint64Var(&options.cnfLimit, "cnf-limit", 0, "Maximum number of clauses, where 0 means unlimited")
	flags.BoolVar(&options.both, "both", false, "Give every variable both direct and order literals")
	flags.BoolVar(&options.mapping, "mapping", false, "Write the literal of every (variable, value) pair as a comment")
	_ = cmd.MarkFlagRequired("model")
}

// configPath returns the configuration file to read, or an empty string when there is none
func (options *encodeOptions) configPath() string {
	if options.config != "" {
		return options.config
	}

	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	directory := filepath.Dir(execPath)

	name, ok := lo.Find(configFileNames, func(name string) bool {
		_, err := os.Stat(filepath.Join(directory, name))
		return err == nil
	})
	if !ok {
		return ""
	}
	return filepath.Join(directory, name)
}

// resolve loads the configuration file and applies the flags on top of it
func (options *encodeOptions) resolve(cmd *cobra.Command) (encoding.Config, error) {
	config := encoding.DefaultConfig()
	if configPath := options.configPath(); configPath != "" {
		var err error
		if config, err = encoding.LoadConfig(configPath); err != nil {
			return encoding.Config{}, err
		}
	}

	if cmd.Flags().Changed("scheme") {
		scheme, err := encoding.ParseScheme(options.scheme)
		if err != nil {
			return encoding.Config{}, err
		}
		config.Scheme = scheme
	}
	if cmd.Flags().Changed("cnf-limit") {
		config.CNFLimit = options.cnfLimit
	}
	config.ForceBoth = config.ForceBoth || options.both
	config.OutputMapping = config.OutputMapping || options.mapping

	return config, config.Validate()
}

// solverPaths returns the solver binaries listed in the configuration file
func (options *encodeOptions) solverPaths() (map[string]string, error) {
	configPath := options.configPath()
	if configPath == "" {
		return map[string]string{}, nil
	}
	return sat.LoadExecutablePaths(configPath)
}
