package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/limaJavier/fdsat/pkg/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSizes(t *testing.T) {
	assert.Equal(t, []int{2, 10, 300}, parseSizes("2,10, 300"))
	assert.Equal(t, []int{0}, parseSizes("0"))
	assert.Panics(t, func() { parseSizes("2,ten") })
}

func TestMeasure(t *testing.T) {
	pairwise := measure(encoding.Pairwise, 5, true, true)
	assert.Equal(t, uint64(5), pairwise.Variables)
	assert.Equal(t, 11, pairwise.Clauses)
	assert.True(t, pairwise.Satisfiable)

	// The functional slack literal turns the at-most-one into an exactly-one
	ladder := measure(encoding.Ladder, 4, false, true)
	assert.Equal(t, uint64(4+1+3), ladder.Variables)
	assert.True(t, ladder.Satisfiable)

	empty := measure(encoding.Commander, 0, true, true)
	assert.Equal(t, 1, empty.Clauses)
	assert.False(t, empty.Satisfiable)
}

func TestToCsv(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "results.csv")
	results := []BenchmarkResult{measure(encoding.Product, 10, true, false), measure(encoding.Bimander, 10, false, false)}

	// Act
	toCsv(path, results)

	// Assert
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Scheme", records[0][0])
	assert.Equal(t, []string{"product", "true", "10"}, records[1][:3])
	assert.Equal(t, []string{"bimander", "false", "10"}, records[2][:3])
}
