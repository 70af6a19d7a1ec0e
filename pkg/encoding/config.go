package encoding

import (
	"fmt"
	"strings"

	"github.com/limaJavier/fdsat/internal/document"
	"github.com/limaJavier/fdsat/pkg/sat"
	"github.com/samber/lo"
)

// Scheme names an at-most-one/exactly-one encoding
type Scheme string

const (
	Pairwise  Scheme = "pairwise"
	Ladder    Scheme = "ladder"
	Product   Scheme = "product"
	Bimander  Scheme = "bimander"
	Commander Scheme = "commander"
)

var schemes = []Scheme{Pairwise, Ladder, Product, Bimander, Commander}

func Schemes() []Scheme {
	return lo.Map(schemes, func(scheme Scheme, _ int) Scheme { return scheme })
}

func ParseScheme(name string) (Scheme, error) {
	scheme := Scheme(strings.ToLower(name))
	if !lo.Contains(schemes, scheme) {
		return "", fmt.Errorf("%w %q, allowed values are: %v", ErrUnknownScheme, name, strings.Join(lo.Map(schemes, func(scheme Scheme, _ int) string { return string(scheme) }), ", "))
	}
	return scheme, nil
}

// Product and commander are only sound for top-level constraints over plain Boolean terms
func (scheme Scheme) restricted() bool {
	return scheme == Product || scheme == Commander
}

type Config struct {
	CNFLimit          uint64 `mapstructure:"cnflimit"` // Zero means unlimited
	Scheme            Scheme `mapstructure:"scheme"`
	Fallback          Scheme `mapstructure:"fallback"` // Used when a constraint is not eligible for Scheme
	Weighted          bool   `mapstructure:"weighted"`
	Top               int64  `mapstructure:"top"`
	ForceBoth         bool   `mapstructure:"forceboth"`
	AuxNonFunctional  bool   `mapstructure:"auxnonfunctional"`
	BimanderGroupSize int    `mapstructure:"bimandergroupsize"`
	CommanderPartSize int    `mapstructure:"commanderpartsize"`
	OutputMapping     bool   `mapstructure:"outputmapping"`
}

func DefaultConfig() Config {
	return Config{
		Scheme:            Product,
		Fallback:          Pairwise,
		Top:               sat.DefaultTop,
		BimanderGroupSize: 2,
		CommanderPartSize: 3,
	}
}

func (config Config) Validate() error {
	if _, err := ParseScheme(string(config.Scheme)); err != nil {
		return err
	}
	if _, err := ParseScheme(string(config.Fallback)); err != nil {
		return fmt.Errorf("fallback: %w", err)
	} else if config.Fallback.restricted() {
		return fmt.Errorf("%w: fallback scheme %q has the same restrictions as the scheme it replaces", ErrInvalidConfig, config.Fallback)
	}

	if config.BimanderGroupSize < 1 {
		return fmt.Errorf("%w: bimander group size must be positive, got %d", ErrInvalidConfig, config.BimanderGroupSize)
	} else if config.CommanderPartSize < 2 {
		return fmt.Errorf("%w: commander part size must be at least 2, got %d", ErrInvalidConfig, config.CommanderPartSize)
	} else if config.Weighted && config.Top <= 0 {
		return fmt.Errorf("%w: top weight must be positive, got %d", ErrInvalidConfig, config.Top)
	}
	return nil
}

// LoadConfig reads a JSON or YAML file on top of DefaultConfig. The "solvers" section belongs to the
// solver registry and is skipped.
func LoadConfig(path string) (Config, error) {
	content, err := document.Read(path)
	if err != nil {
		return Config{}, err
	}

	config := DefaultConfig()
	if err := document.DecodeMap(lo.OmitByKeys(content, []string{"solvers"}), &config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	config.Scheme = Scheme(strings.ToLower(string(config.Scheme)))
	config.Fallback = Scheme(strings.ToLower(string(config.Fallback)))
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
