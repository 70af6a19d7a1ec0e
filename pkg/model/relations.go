package model

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var comparisons = map[string]func(x, y int64) bool{
	"eq": func(x, y int64) bool { return x == y },
	"ne": func(x, y int64) bool { return x != y },
	"lt": func(x, y int64) bool { return x < y },
	"le": func(x, y int64) bool { return x <= y },
	"gt": func(x, y int64) bool { return x > y },
	"ge": func(x, y int64) bool { return x >= y },
}

var functions = map[string]func(x, y int64) (int64, bool){
	"plus":  CheckedAdd,
	"minus": CheckedSub,
	"times": CheckedMul,
	"div":   FloorDiv,
	"mod":   FloorMod,
	"min":   func(x, y int64) (int64, bool) { return min(x, y), true },
	"max":   func(x, y int64) (int64, bool) { return max(x, y), true },
	"absdiff": func(x, y int64) (int64, bool) {
		if x > y {
			return CheckedSub(x, y)
		}
		return CheckedSub(y, x)
	},
}

var cardinalities = map[string]Kind{
	"atmostone":  AtMostOne,
	"exactlyone": ExactlyOne,
	"or":         Disjunction,
}

var bounds = map[string]Kind{
	"atmost":  AtMost,
	"atleast": AtLeast,
}

// Relations returns the names understood by NewConstraints
func Relations() []string {
	names := slices.Concat(lo.Keys(comparisons), lo.Keys(functions), lo.Keys(cardinalities), lo.Keys(bounds), []string{"alldiff"})
	slices.Sort(names)
	return names
}

// CheckedAdd is undefined when the sum overflows int64
func CheckedAdd(x, y int64) (int64, bool) {
	sum := x + y
	if (y > 0 && sum < x) || (y < 0 && sum > x) {
		return 0, false
	}
	return sum, true
}

// CheckedSub is undefined when the difference overflows int64
func CheckedSub(x, y int64) (int64, bool) {
	difference := x - y
	if (y > 0 && difference > x) || (y < 0 && difference < x) {
		return 0, false
	}
	return difference, true
}

// CheckedMul is undefined when the product overflows int64
func CheckedMul(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	product := x * y
	if product/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}
	return product, true
}

// FloorDiv rounds the quotient towards negative infinity; it is undefined for a zero divisor
// and for the one quotient that overflows
func FloorDiv(x, y int64) (int64, bool) {
	if y == 0 || (x == math.MinInt64 && y == -1) {
		return 0, false
	}
	quotient := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		quotient--
	}
	return quotient, true
}

// FloorMod takes the sign of the divisor, so x == y*FloorDiv(x, y) + FloorMod(x, y)
func FloorMod(x, y int64) (int64, bool) {
	if y == 0 {
		return 0, false
	}
	remainder := x % y
	if remainder != 0 && ((remainder < 0) != (y < 0)) {
		remainder += y
	}
	return remainder, true
}

// NewConstraints builds the constraints of a named relation. Comparisons read "x op y + offset"
// (or "x op offset" with a single operand), functions read "z == f(x, y)" and bounds compare the
// operand with value. Some relations decompose into several constraints.
func NewConstraints(relation string, operands []Operand, offset, value int64) ([]Constraint, error) {
	relation = strings.ToLower(relation)
	name := fmt.Sprintf("%v(%v)", relation, strings.Join(lo.Map(operands, func(operand Operand, _ int) string { return operand.String() }), ", "))
	if offset != 0 {
		name = fmt.Sprintf("%v%+d", name, offset)
	}

	if compare, ok := comparisons[relation]; ok {
		switch len(operands) {
		case 1:
			return []Constraint{{
				Name:     name,
				Kind:     Relation,
				Operands: operands,
				Test:     func(values ...int64) bool { return compare(values[0], offset) },
			}}, nil
		case 2:
			return []Constraint{{
				Name:     name,
				Kind:     Relation,
				Operands: operands,
				Test:     func(values ...int64) bool { return compare(values[0], values[1]+offset) },
			}}, nil
		}
		return nil, fmt.Errorf("%w: %v expects one or two operands, got %d", ErrInvalidModel, relation, len(operands))
	}

	if function, ok := functions[relation]; ok {
		if len(operands) != 3 {
			return nil, fmt.Errorf("%w: %v expects three operands, got %d", ErrInvalidModel, relation, len(operands))
		}
		return []Constraint{{
			Name:     name,
			Kind:     Functional,
			Operands: operands,
			Function: function,
		}}, nil
	}

	if kind, ok := bounds[relation]; ok {
		if len(operands) != 1 {
			return nil, fmt.Errorf("%w: %v expects one operand, got %d", ErrInvalidModel, relation, len(operands))
		}
		return []Constraint{{
			Name:     fmt.Sprintf("%v %d", name, value),
			Kind:     kind,
			Operands: operands,
			Value:    value,
		}}, nil
	}

	if kind, ok := cardinalities[relation]; ok {
		return []Constraint{{
			Name:     name,
			Kind:     kind,
			Operands: operands,
		}}, nil
	}

	if relation == "alldiff" {
		constraints := make([]Constraint, 0, len(operands)*(len(operands)-1)/2)
		for i := range operands {
			for j := i + 1; j < len(operands); j++ {
				pair, _ := NewConstraints("ne", []Operand{operands[i], operands[j]}, 0, 0)
				constraints = append(constraints, pair...)
			}
		}
		return constraints, nil
	}

	return nil, fmt.Errorf("%w: unknown relation %q, allowed values are: %v", ErrInvalidModel, relation, strings.Join(Relations(), ", "))
}
