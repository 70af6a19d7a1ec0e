package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/limaJavier/fdsat/pkg/encoding"
	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/samber/lo"
)

var defaultSizes = []int{2, 5, 10, 20, 50, 100, 200, 500, 1000}

type BenchmarkResult struct {
	Scheme      encoding.Scheme
	ExactlyOne  bool
	Literals    int
	Variables   uint64
	Clauses     int
	Duration    int64 // Microseconds
	Satisfiable bool
}

func main() {
	outPtr := flag.String("out", "benchmark_results.csv", "Path to the CSV file where the results will be written")
	sizesPtr := flag.String("sizes", "", "Comma-separated literal counts; if empty, the default sizes are used")
	verifyPtr := flag.Bool("verify", false, "Solve every encoding with gophersat")
	flag.Parse()

	sizes := defaultSizes
	if *sizesPtr != "" {
		sizes = parseSizes(*sizesPtr)
	}

	results := make([]BenchmarkResult, 0, 2*len(sizes)*len(encoding.Schemes()))
	for _, scheme := range encoding.Schemes() {
		for _, n := range sizes {
			for _, exactlyOne := range []bool{true, false} {
				fmt.Printf("Benchmarking scheme \"%v\" over %v literals (exactly-one: %v)\n", scheme, n, exactlyOne)
				results = append(results, measure(scheme, n, exactlyOne, *verifyPtr))
			}
		}
	}

	toCsv(*outPtr, results)
}

func parseSizes(sizesStr string) []int {
	return lo.Map(strings.Split(sizesStr, ","), func(sizeStr string, _ int) int {
		size := lo.Must(strconv.Atoi(strings.TrimSpace(sizeStr)))
		if size < 0 {
			log.Fatalf("literal count must not be negative: %v", size)
		}
		return size
	})
}

func measure(scheme encoding.Scheme, n int, exactlyOne, verify bool) BenchmarkResult {
	formula := sat.NewFormula()
	literals := lo.Times(n, func(_ int) sat.Literal { return formula.NewVariable() })
	encoder := encoding.NewCardinalityEncoder(formula, encoding.DefaultConfig())

	start := time.Now()
	if err := encoder.Encode(scheme, literals, exactlyOne); err != nil {
		log.Fatalf("cannot encode %v over %v literals: %v", scheme, n, err)
	}
	duration := time.Since(start).Microseconds()

	result := BenchmarkResult{
		Scheme:     scheme,
		ExactlyOne: exactlyOne,
		Literals:   n,
		Variables:  formula.Variables,
		Clauses:    len(formula.Clauses),
		Duration:   duration,
	}
	if verify {
		result.Satisfiable = formula.Solve() != nil
	}
	return result
}

func toCsv(path string, results []BenchmarkResult) {
	file, err := os.Create(path)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Scheme", "ExactlyOne", "Literals", "Variables", "Clauses", "Duration(us)", "Satisfiable"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			string(result.Scheme),
			fmt.Sprintf("%v", result.ExactlyOne),
			fmt.Sprintf("%d", result.Literals),
			fmt.Sprintf("%d", result.Variables),
			fmt.Sprintf("%d", result.Clauses),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%v", result.Satisfiable),
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}
