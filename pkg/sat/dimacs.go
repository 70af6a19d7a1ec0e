package sat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadFormula parses a plain DIMACS CNF document. Comments are kept, weighted documents are rejected.
func ReadFormula(reader io.Reader) (*Formula, error) {
	formula := NewFormula()
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	header := false
	clause := []int64{}
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line[0] == 'c':
			formula.Comments = append(formula.Comments, strings.TrimSpace(line[1:]))
			continue
		case line[0] == 'p':
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: malformed header %q", ErrInvalidDIMACS, line)
			} else if fields[1] != "cnf" {
				return nil, fmt.Errorf("%w: %q documents are not supported", ErrInvalidDIMACS, fields[1])
			}
			variables, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid variable count %q", ErrInvalidDIMACS, fields[2])
			}
			formula.Variables = variables
			header = true
			continue
		}

		if !header {
			return nil, fmt.Errorf("%w: clause before header on line %d", ErrInvalidDIMACS, lineNumber)
		}
		for _, field := range strings.Fields(line) {
			literal, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid literal %q on line %d", ErrInvalidDIMACS, field, lineNumber)
			}
			if literal == 0 {
				formula.Clauses = append(formula.Clauses, clause)
				clause = []int64{}
				continue
			}
			if uint64(max(literal, -literal)) > formula.Variables {
				return nil, fmt.Errorf("%w: literal %d exceeds the declared %d variables", ErrInvalidDIMACS, literal, formula.Variables)
			}
			clause = append(clause, literal)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(clause) > 0 {
		return nil, fmt.Errorf("%w: unterminated clause at end of input", ErrInvalidDIMACS)
	}
	return formula, nil
}

func LoadFormula(path string) (*Formula, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadFormula(file)
}
