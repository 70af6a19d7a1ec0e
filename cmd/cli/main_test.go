package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/limaJavier/fdsat/pkg/encoding"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const problemFile = "../../pkg/encoding/testdata/problem.yaml"

func execute(t *testing.T, args ...string) error {
	t.Helper()
	exitCode = 0
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestEncode(t *testing.T) {
	// Arrange
	out := filepath.Join(t.TempDir(), "problem.wcnf")

	// Act
	err := execute(t, "encode", "--model", problemFile, "--out", out, "--scheme", "ladder", "--maxsat")

	// Assert
	require.NoError(t, err)
	bytes, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(bytes), "p wcnf "))
}

func TestSolve(t *testing.T) {
	t.Run("Optimal assignment of the decision variables", func(t *testing.T) {
		// Arrange
		out := filepath.Join(t.TempDir(), "assignment.json")

		// Act
		err := execute(t, "solve", "--model", problemFile, "--out", out)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, exitSatisfiable, exitCode)

		bytes, err := os.ReadFile(out)
		require.NoError(t, err)
		var assignment map[string]int64
		require.NoError(t, json.Unmarshal(bytes, &assignment))
		assert.NotContains(t, assignment, "z")
		assert.Equal(t, int64(15), assignment["x"]+assignment["y"])
	})

	t.Run("Unsatisfiable model", func(t *testing.T) {
		// Arrange
		directory := t.TempDir()
		modelFile := filepath.Join(directory, "model.yaml")
		content := "variables:\n  - {name: x, domain: [[0, 5]]}\nconstraints:\n  - {relation: atmost, operands: [x], value: 1}\n  - {relation: atleast, operands: [x], value: 2}\n"
		require.NoError(t, os.WriteFile(modelFile, []byte(content), 0o644))

		// Act
		err := execute(t, "solve", "--model", modelFile, "--solver", "gini", "--cnf", filepath.Join(directory, "model.cnf"))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, exitUnsatisfiable, exitCode)
		assert.FileExists(t, filepath.Join(directory, "model.cnf"))
	})

	t.Run("Unknown solver", func(t *testing.T) {
		// Act
		err := execute(t, "solve", "--model", problemFile, "--solver", "glucose")

		// Assert
		assert.ErrorContains(t, err, "unknown solver")
	})
}

func TestResolve(t *testing.T) {
	// Arrange
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("scheme: bimander\ncnflimit: 10\nsolvers:\n  kissat: /opt/kissat\n"), 0o644))

	var options encodeOptions
	cmd := &cobra.Command{}
	options.bind(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--config", configFile, "--scheme", "commander", "--both"}))

	// Act
	config, err := options.resolve(cmd)
	paths, pathsErr := options.solverPaths()

	// Assert
	require.NoError(t, err)
	require.NoError(t, pathsErr)
	assert.Equal(t, encoding.Commander, config.Scheme)
	assert.Equal(t, uint64(10), config.CNFLimit)
	assert.True(t, config.ForceBoth)
	assert.Equal(t, map[string]string{"kissat": "/opt/kissat"}, paths)
}

func TestConfigPath(t *testing.T) {
	t.Run("Explicit flag", func(t *testing.T) {
		options := encodeOptions{config: filepath.Join("settings", "fdsat.yaml")}

		assert.Equal(t, filepath.Join("settings", "fdsat.yaml"), options.configPath())
	})

	t.Run("Config file next to the executable", func(t *testing.T) {
		// Arrange
		execPath, err := os.Executable()
		require.NoError(t, err)
		directory := filepath.Dir(execPath)
		for _, name := range configFileNames {
			if _, err := os.Stat(filepath.Join(directory, name)); err == nil {
				t.Skipf("%v already exists next to the test binary", name)
			}
		}
		configFile := filepath.Join(directory, "config.json")
		require.NoError(t, os.WriteFile(configFile, []byte(`{"scheme": "ladder"}`), 0o644))
		t.Cleanup(func() { os.Remove(configFile) })

		// Act
		path := (&encodeOptions{}).configPath()

		// Assert
		assert.Equal(t, configFile, path)
	})
}
