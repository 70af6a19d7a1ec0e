package sat

import "log"

// VariableSpace hands out SAT variables starting from 1
type VariableSpace struct {
	next int64
}

func NewVariableSpace() *VariableSpace {
	return &VariableSpace{next: 1}
}

// Next allocates a fresh variable and returns its positive literal
func (space *VariableSpace) Next() Literal {
	if space.next == 0 {
		space.next = 1
	}
	variable := space.next
	space.next++
	return Literal(variable)
}

// Count returns how many variables have been allocated so far
func (space *VariableSpace) Count() uint64 {
	if space.next == 0 {
		return 0
	}
	return uint64(space.next - 1)
}

func (space *VariableSpace) restore(count uint64) {
	if count > space.Count() {
		log.Panicf("cannot restore variable space forward: %v > %v", count, space.Count())
	}
	space.next = int64(count) + 1
}
