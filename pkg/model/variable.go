package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type Category int

const (
	Decision Category = iota
	Auxiliary
)

func (category Category) String() string {
	switch category {
	case Decision:
		return "decision"
	case Auxiliary:
		return "auxiliary"
	}
	return fmt.Sprintf("category(%d)", int(category))
}

func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(name) {
	case "", "decision":
		return Decision, nil
	case "auxiliary", "aux":
		return Auxiliary, nil
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidModel, name)
}

// Representation is a set of SAT interpretations of a variable
type Representation uint8

const (
	DirectRepresentation Representation = 1 << iota // Literals for "variable == value"
	OrderRepresentation                             // Literals for "variable <= value"

	NoRepresentation   Representation = 0
	BothRepresentation                = DirectRepresentation | OrderRepresentation
)

func (representation Representation) Has(other Representation) bool {
	return representation&other == other
}

func ParseRepresentation(name string) (Representation, error) {
	switch strings.ToLower(name) {
	case "":
		return NoRepresentation, nil
	case "direct":
		return DirectRepresentation, nil
	case "order":
		return OrderRepresentation, nil
	case "both":
		return BothRepresentation, nil
	}
	return 0, fmt.Errorf("%w: unknown encoding %q", ErrInvalidModel, name)
}

type Variable struct {
	Name     string
	Domain   Domain
	Category Category
	Needs    Representation // Representations required regardless of the constraints
}

// VariableCatalog is the read-only view of the symbol table the encoders work against
type VariableCatalog interface {
	// Returns the variable names in declaration order
	Names() []string
	// Returns the domain of the variable
	Domain(name string) (Domain, bool)
	// Returns the category of the variable
	Category(name string) (Category, bool)
	// Returns the representations declared for the variable
	Needs(name string) Representation
}

// Catalog is the in-memory VariableCatalog
type Catalog struct {
	names     []string
	variables map[string]Variable
}

func NewCatalog(variables ...Variable) (*Catalog, error) {
	catalog := &Catalog{variables: make(map[string]Variable)}
	for _, variable := range variables {
		if err := catalog.Add(variable); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func (catalog *Catalog) Add(variable Variable) error {
	if variable.Name == "" {
		return fmt.Errorf("%w: variable without a name", ErrInvalidModel)
	} else if _, ok := catalog.variables[variable.Name]; ok {
		return fmt.Errorf("%w: duplicate variable %q", ErrInvalidModel, variable.Name)
	}
	catalog.names = append(catalog.names, variable.Name)
	catalog.variables[variable.Name] = variable
	return nil
}

func (catalog *Catalog) Names() []string {
	return lo.Map(catalog.names, func(name string, _ int) string { return name })
}

func (catalog *Catalog) Variable(name string) (Variable, bool) {
	variable, ok := catalog.variables[name]
	return variable, ok
}

func (catalog *Catalog) Domain(name string) (Domain, bool) {
	variable, ok := catalog.variables[name]
	return variable.Domain, ok
}

func (catalog *Catalog) Category(name string) (Category, bool) {
	variable, ok := catalog.variables[name]
	return variable.Category, ok
}

func (catalog *Catalog) Needs(name string) Representation {
	return catalog.variables[name].Needs
}
