package encoding

import (
	"fmt"
	"log"
	"maps"

	"github.com/limaJavier/fdsat/pkg/model"
	"github.com/limaJavier/fdsat/pkg/sat"
)

// Key is a (domain variable, value) pair
type Key struct {
	Variable string
	Value    int64
}

func (key Key) String() string {
	return fmt.Sprintf("%v=%d", key.Variable, key.Value)
}

// Mapping holds the literals of every encoded variable and the tables that turn a solver
// assignment back into values
type Mapping struct {
	domains         map[string]model.Domain
	representations map[string]model.Representation
	direct          map[Key]sat.Literal // "variable == value"
	order           map[Key]sat.Literal // "variable <= value"

	decode  map[sat.Literal]Key // Direct literal (with its sign) to pair
	minimum map[sat.Literal]Key // Order-only tables
	middle  map[sat.Literal]Key
	maximum map[sat.Literal]Key
}

func NewMapping() *Mapping {
	return &Mapping{
		domains:         make(map[string]model.Domain),
		representations: make(map[string]model.Representation),
		direct:          make(map[Key]sat.Literal),
		order:           make(map[Key]sat.Literal),
		decode:          make(map[sat.Literal]Key),
		minimum:         make(map[sat.Literal]Key),
		middle:          make(map[sat.Literal]Key),
		maximum:         make(map[sat.Literal]Key),
	}
}

func (mapping *Mapping) setDomain(variable string, domain model.Domain) {
	if _, ok := mapping.domains[variable]; ok {
		log.Panicf("variable %q is already mapped", variable)
	}
	mapping.domains[variable] = domain

	// Empty and single-value domains answer every query from their bounds
	switch size := domain.Size(); {
	case size == 0:
		mapping.representations[variable] = model.BothRepresentation
	case size == 1:
		mapping.representations[variable] = model.OrderRepresentation
	}
}

func (mapping *Mapping) setDirect(key Key, literal sat.Literal) {
	if previous, ok := mapping.direct[key]; ok && previous != literal {
		log.Panicf("direct literal of %v is already %v, cannot map it to %v", key, previous, literal)
	}
	mapping.direct[key] = literal
	mapping.representations[key.Variable] |= model.DirectRepresentation
	if !literal.IsConstant() {
		mapping.decode[literal] = key
	}
}

func (mapping *Mapping) setOrder(key Key, literal sat.Literal) {
	if previous, ok := mapping.order[key]; ok && previous != literal {
		log.Panicf("order literal of %v is already %v, cannot map it to %v", key, previous, literal)
	}
	mapping.order[key] = literal
	mapping.representations[key.Variable] |= model.OrderRepresentation
}

// Has reports whether the variable can answer Direct (or Order) queries
func (mapping *Mapping) Has(variable string, representation model.Representation) bool {
	return mapping.representations[variable].Has(representation)
}

// IsMapped reports whether the variable has been encoded
func (mapping *Mapping) IsMapped(variable string) bool {
	_, ok := mapping.domains[variable]
	return ok
}

// Direct returns the literal of "variable == value"; values without one (outside the domain) are False
func (mapping *Mapping) Direct(variable string, value int64) sat.Literal {
	if literal, ok := mapping.direct[Key{Variable: variable, Value: value}]; ok {
		return literal
	}
	return sat.False
}

// Order returns the literal of "variable <= value". Values below the domain are False, values at or
// above its upper bound are True and values inside a hole share the literal of the value below the hole.
func (mapping *Mapping) Order(variable string, value int64) sat.Literal {
	if literal, ok := mapping.order[Key{Variable: variable, Value: value}]; ok {
		return literal
	}

	domain, ok := mapping.domains[variable]
	if !ok {
		log.Panicf("variable %q is not mapped", variable)
	} else if domain.IsEmpty() {
		return sat.False
	}

	lower, upper := domain.Bounds()
	if value < lower {
		return sat.False
	} else if value >= upper {
		return sat.True
	}

	floor, _ := domain.Floor(value)
	literal, ok := mapping.order[Key{Variable: variable, Value: floor}]
	if !ok {
		log.Panicf("variable %q has no order literal for %d", variable, floor)
	}
	return literal
}

// Lookup returns the pair a direct literal stands for
func (mapping *Mapping) Lookup(literal sat.Literal) (Key, bool) {
	key, ok := mapping.decode[literal]
	return key, ok
}

func (mapping *Mapping) DirectTable() map[sat.Literal]Key {
	return maps.Clone(mapping.decode)
}

// OrderTables returns the order-only decode tables: a true literal in minimum or middle means the
// variable is at most that value, a true literal in maximum means it takes its largest value
func (mapping *Mapping) OrderTables() (minimum, middle, maximum map[sat.Literal]Key) {
	return maps.Clone(mapping.minimum), maps.Clone(mapping.middle), maps.Clone(mapping.maximum)
}

// Decode turns a solver assignment into a value per mapped variable
func (mapping *Mapping) Decode(solution sat.Solution) map[string]int64 {
	truth := make(map[sat.Literal]bool, len(solution))
	for _, literal := range solution {
		truth[sat.Literal(literal)] = true
	}

	values := make(map[string]int64)
	for literal, key := range mapping.decode {
		if truth[literal] {
			values[key.Variable] = key.Value
		}
	}

	// Order-only variables take the smallest value whose order literal holds
	for _, table := range []map[sat.Literal]Key{mapping.minimum, mapping.middle, mapping.maximum} {
		for literal, key := range table {
			if !truth[literal] {
				continue
			}
			if value, ok := values[key.Variable]; !ok || key.Value < value {
				values[key.Variable] = key.Value
			}
		}
	}
	return values
}
