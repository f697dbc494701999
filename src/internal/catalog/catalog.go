package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Family selects how a collection's results are handed back to callers.
// Stream collections report records plus a count; delegate collections
// report the records only.
type Family string

const (
	FamilyStream   Family = "stream"
	FamilyDelegate Family = "delegate"
)

// Match is the clause shape an accessor renders.
type Match string

const (
	MatchExact  Match = "exact"
	MatchPhrase Match = "phrase"
	MatchRange  Match = "range"
	MatchSpan   Match = "span"
	MatchBool   Match = "bool"
)

// Value types accepted by accessors.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownAccessor   = errors.New("unknown accessor")
)

// Accessor is one queryable dimension of a collection.
type Accessor struct {
	Name   string   `yaml:"name" json:"name"`
	Field  string   `yaml:"field,omitempty" json:"field,omitempty"`
	Fields []string `yaml:"fields,omitempty" json:"fields,omitempty"`
	Match  Match    `yaml:"match" json:"match"`
	Type   string   `yaml:"type,omitempty" json:"type,omitempty"`

	// Argument names used by tool callers. Param defaults to Name,
	// MinParam and MaxParam to "min" and "max".
	Param    string `yaml:"param,omitempty" json:"param,omitempty"`
	MinParam string `yaml:"min_param,omitempty" json:"min_param,omitempty"`
	MaxParam string `yaml:"max_param,omitempty" json:"max_param,omitempty"`
}

// Arity is the number of values the accessor takes (1, or 2 for min/max).
func (a Accessor) Arity() int {
	if a.Match == MatchRange || a.Match == MatchSpan {
		return 2
	}
	return 1
}

// Params lists the argument names in call order: one name, or the
// min and max names for ranges.
func (a Accessor) Params() []string {
	if a.Arity() == 2 {
		return []string{a.MinParam, a.MaxParam}
	}
	return []string{a.Param}
}

// ValueType returns the declared type, defaulting to string (boolean for bool matches).
func (a Accessor) ValueType() string {
	if a.Match == MatchBool {
		return TypeBoolean
	}
	if a.Type == "" {
		return TypeString
	}
	return a.Type
}

// Collection is a Solr core of the BV-BRC data API.
type Collection struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Family      Family     `yaml:"family" json:"family"`
	Key         string     `yaml:"key" json:"key"`
	Accessors   []Accessor `yaml:"accessors" json:"accessors"`

	byName map[string]int
}

// Accessor finds an accessor by name.
func (c *Collection) Accessor(name string) (Accessor, error) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Accessor{}, fmt.Errorf("%w %q for collection %s", ErrUnknownAccessor, name, c.Name)
	}
	return c.Accessors[i], nil
}

// Catalog is the full set of collections.
type Catalog struct {
	Collections []*Collection `yaml:"collections" json:"collections"`

	byName map[string]*Collection
}

// Lookup finds a collection by name.
func (c *Catalog) Lookup(name string) (*Collection, error) {
	col, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCollection, name)
	}
	return col, nil
}

// Names returns the collection names sorted alphabetically.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.Collections))
	for _, col := range c.Collections {
		out = append(out, col.Name)
	}
	sort.Strings(out)
	return out
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Load returns the embedded catalog. It is parsed once per process.
func Load() (*Catalog, error) {
	loadOnce.Do(func() { loaded, loadErr = Parse(embedded) })
	return loaded, loadErr
}

// MustLoad is Load for callers that treat a broken embedded table as a programming error.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	c.byName = make(map[string]*Collection, len(c.Collections))
	for _, col := range c.Collections {
		if strings.TrimSpace(col.Name) == "" {
			return errors.New("catalog: collection without name")
		}
		if _, dup := c.byName[col.Name]; dup {
			return fmt.Errorf("catalog: duplicate collection %s", col.Name)
		}
		switch col.Family {
		case FamilyStream, FamilyDelegate:
		case "":
			col.Family = FamilyStream
		default:
			return fmt.Errorf("catalog: %s: unknown family %q", col.Name, col.Family)
		}
		if col.Key == "" {
			col.Key = "id"
		}
		col.byName = make(map[string]int, len(col.Accessors))
		for i := range col.Accessors {
			a := &col.Accessors[i]
			if err := validateAccessor(a); err != nil {
				return fmt.Errorf("catalog: %s.%s: %w", col.Name, a.Name, err)
			}
			if _, dup := col.byName[a.Name]; dup {
				return fmt.Errorf("catalog: %s: duplicate accessor %s", col.Name, a.Name)
			}
			col.byName[a.Name] = i
		}
		c.byName[col.Name] = col
	}
	return nil
}

func validateAccessor(a *Accessor) error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("accessor without name")
	}
	switch a.Match {
	case MatchExact, MatchPhrase, MatchRange, MatchBool:
		if a.Field == "" {
			a.Field = a.Name
		}
	case MatchSpan:
		if len(a.Fields) != 2 {
			return errors.New("span needs exactly two fields")
		}
	default:
		return fmt.Errorf("unknown match %q", a.Match)
	}
	if a.Arity() == 2 {
		if a.MinParam == "" {
			a.MinParam = "min"
		}
		if a.MaxParam == "" {
			a.MaxParam = "max"
		}
		if a.MinParam == a.MaxParam {
			return fmt.Errorf("min and max params are both %q", a.MinParam)
		}
	} else if a.Param == "" {
		a.Param = a.Name
	}
	switch a.Type {
	case "", TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeDate:
	default:
		return fmt.Errorf("unknown type %q", a.Type)
	}
	return nil
}
