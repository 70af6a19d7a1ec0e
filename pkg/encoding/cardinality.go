package encoding

import (
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/samber/lo"
)

// CardinalityEncoder writes at-most-one and exactly-one constraints over literals
type CardinalityEncoder struct {
	writer sat.ClauseWriter
	config Config
}

func NewCardinalityEncoder(writer sat.ClauseWriter, config Config) *CardinalityEncoder {
	return &CardinalityEncoder{writer: writer, config: config}
}

// SchemeFor returns the configured scheme, or the fallback when the literals do not form a
// top-level constraint over plain Boolean terms and the scheme requires it
func (encoder *CardinalityEncoder) SchemeFor(eligible bool) Scheme {
	if encoder.config.Scheme.restricted() && !eligible {
		return encoder.config.Fallback
	}
	return encoder.config.Scheme
}

func (encoder *CardinalityEncoder) AtMostOne(scheme Scheme, literals []sat.Literal) error {
	return encoder.Encode(scheme, literals, false)
}

func (encoder *CardinalityEncoder) ExactlyOne(scheme Scheme, literals []sat.Literal) error {
	return encoder.Encode(scheme, literals, true)
}

func (encoder *CardinalityEncoder) Encode(scheme Scheme, literals []sat.Literal, exactlyOne bool) error {
	literals = slices.Clone(literals)
	if len(literals) == 0 {
		if exactlyOne {
			return encoder.writer.AddClause() // Nothing can be the one
		}
		return nil
	}

	switch scheme {
	case Pairwise:
		return encoder.pairwise(literals, exactlyOne)
	case Commander:
		return encoder.commander(literals, exactlyOne)
	case Ladder, Product, Bimander:
	default:
		return fmt.Errorf("%w %q", ErrUnknownScheme, scheme)
	}

	// Auxiliaries must be fully defined by the literals, so the AMO becomes an EO with a slack literal
	if !exactlyOne && !encoder.config.AuxNonFunctional {
		literals = append(literals, encoder.writer.NewVariable())
		exactlyOne = true
	}

	switch scheme {
	case Ladder:
		return encoder.ladder(literals, exactlyOne)
	case Product:
		return encoder.product(literals, exactlyOne)
	}
	return encoder.bimander(literals, exactlyOne)
}

func (encoder *CardinalityEncoder) atLeastOne(literals []sat.Literal) error {
	return encoder.writer.AddClause(literals...)
}

func (encoder *CardinalityEncoder) pairwise(literals []sat.Literal, exactlyOne bool) error {
	for i := range literals {
		for j := i + 1; j < len(literals); j++ {
			if err := encoder.writer.AddClause(-literals[i], -literals[j]); err != nil {
				return err
			}
		}
	}
	if exactlyOne {
		return encoder.atLeastOne(literals)
	}
	return nil
}

// ladder chains rungs where rung i means "the true literal is at or before i"
func (encoder *CardinalityEncoder) ladder(literals []sat.Literal, exactlyOne bool) error {
	rungs := make([]sat.Literal, 1, max(len(literals)-1, 1))
	rungs[0] = literals[0]
	for i := 1; i < len(literals)-1; i++ {
		rungs = append(rungs, encoder.writer.NewVariable())
	}

	for i := 0; i < len(rungs)-1; i++ {
		if err := encoder.writer.AddClause(-rungs[i], rungs[i+1]); err != nil {
			return err
		}
	}

	for i := 1; i < len(literals); i++ {
		if err := encoder.writer.AddClause(-literals[i], -rungs[i-1]); err != nil {
			return err
		}
		if i < len(literals)-1 {
			if err := encoder.writer.AddClause(-literals[i], rungs[i]); err != nil {
				return err
			}
		}
	}

	if exactlyOne {
		return encoder.atLeastOne(literals)
	}
	return nil
}

// product lays the literals on a p x q grid; a literal implies its row and its column
func (encoder *CardinalityEncoder) product(literals []sat.Literal, exactlyOne bool) error {
	if exactlyOne {
		if err := encoder.atLeastOne(literals); err != nil {
			return err
		}
	}

	n := len(literals)
	if n <= 6 {
		return encoder.pairwise(literals, false)
	}

	p := int(math.Ceil(math.Sqrt(float64(n))))
	q := (n + p - 1) / p

	rows := lo.Times(p, func(_ int) sat.Literal { return encoder.writer.NewVariable() })
	columns := lo.Times(q, func(_ int) sat.Literal { return encoder.writer.NewVariable() })

	for i, literal := range literals {
		if err := encoder.writer.AddClause(-literal, rows[i%p]); err != nil {
			return err
		}
		if err := encoder.writer.AddClause(-literal, columns[i/p]); err != nil {
			return err
		}
	}

	if err := encoder.product(rows, false); err != nil {
		return err
	}
	return encoder.product(columns, false)
}

// bimander gives every group a binary code over ceil(log2(groups)) selector bits
func (encoder *CardinalityEncoder) bimander(literals []sat.Literal, exactlyOne bool) error {
	if exactlyOne {
		if err := encoder.atLeastOne(literals); err != nil {
			return err
		}
	}

	groups := lo.Chunk(literals, encoder.config.BimanderGroupSize)
	for _, group := range groups {
		if err := encoder.pairwise(group, false); err != nil {
			return err
		}
	}

	selectors := lo.Times(bits.Len(uint(len(groups)-1)), func(_ int) sat.Literal { return encoder.writer.NewVariable() })
	for i, group := range groups {
		for bit, selector := range selectors {
			if (i>>bit)&1 == 0 {
				selector = selector.Negate()
			}
			for _, literal := range group {
				if err := encoder.writer.AddClause(-literal, selector); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// commander splits the literals into cells, each represented by one commander literal, and recurses
// on the commanders
func (encoder *CardinalityEncoder) commander(literals []sat.Literal, exactlyOne bool) error {
	if len(literals) <= encoder.config.CommanderPartSize {
		return encoder.pairwise(literals, exactlyOne)
	}

	commanders := make([]sat.Literal, 0, len(literals)/encoder.config.CommanderPartSize+1)
	for _, cell := range lo.Chunk(literals, encoder.config.CommanderPartSize) {
		if len(cell) == 1 {
			commanders = append(commanders, cell[0])
			continue
		}

		if err := encoder.pairwise(cell, false); err != nil {
			return err
		}

		commander := encoder.writer.NewVariable()
		commanders = append(commanders, commander)
		for _, literal := range cell {
			if err := encoder.writer.AddClause(-literal, commander); err != nil {
				return err
			}
		}

		if exactlyOne || !encoder.config.AuxNonFunctional {
			if err := encoder.writer.AddClause(append([]sat.Literal{-commander}, cell...)...); err != nil {
				return err
			}
		}
	}

	return encoder.commander(commanders, exactlyOne)
}
