// Package tools exposes every catalog accessor as a named tool with a JSON
// Schema for its arguments.
package tools

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"bvbrcdata/src/internal/catalog"
)

// Prefix starts every tool name.
const Prefix = "bvbrc_"

// DirectTool is the RQL pass-through tool.
const DirectTool = Prefix + "query_direct"

// ErrUnknownTool is returned by Call for names not in the registry.
var ErrUnknownTool = errors.New("unknown tool")

// Kind is the accessor shape behind a tool.
type Kind string

const (
	KindBy      Kind = "by"
	KindFilters Kind = "filters"
	KindKeyword Kind = "keyword"
	KindAll     Kind = "all"
	KindDirect  Kind = "direct"
)

// Tool describes one callable tool.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`

	Collection string           `json:"-"`
	Family     catalog.Family   `json:"-"`
	Kind       Kind             `json:"-"`
	Accessor   catalog.Accessor `json:"-"`

	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

// Validate checks args against the tool's input schema.
func (t *Tool) Validate(args map[string]any) error {
	t.once.Do(func() {
		t.schema, t.err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(t.InputSchema))
	})
	if t.err != nil {
		return fmt.Errorf("%s: schema: %w", t.Name, t.err)
	}
	if args == nil {
		args = map[string]any{}
	}
	res, err := t.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("%s: validate: %w", t.Name, err)
	}
	if !res.Valid() {
		var errs []string
		for _, desc := range res.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("invalid arguments: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ByName is the tool name of a field accessor.
func ByName(collection, accessor string) string {
	return Prefix + collection + "_get_by_" + accessor
}

// FiltersName, KeywordName and AllName name the per-collection generic tools.
func FiltersName(collection string) string { return Prefix + collection + "_query_by_filters" }
func KeywordName(collection string) string { return Prefix + collection + "_search_by_keyword" }
func AllName(collection string) string     { return Prefix + collection + "_get_all" }

// Build creates the tool list for a catalog: for each collection one tool per
// accessor, then filters, keyword and all; the direct tool comes last.
func Build(cat *catalog.Catalog) []*Tool {
	var out []*Tool
	for _, name := range cat.Names() {
		col, _ := cat.Lookup(name)
		for _, acc := range col.Accessors {
			out = append(out, &Tool{
				Name:        ByName(col.Name, acc.Name),
				Description: byDescription(col, acc),
				InputSchema: bySchema(acc),
				Collection:  col.Name,
				Family:      col.Family,
				Kind:        KindBy,
				Accessor:    acc,
			})
		}
		out = append(out,
			&Tool{
				Name:        FiltersName(col.Name),
				Description: fmt.Sprintf("Query %s records matching all key/value filters given as a JSON object.", col.Name),
				InputSchema: objectSchema(map[string]any{
					"filters_json": prop("string", `JSON object of field/value pairs, e.g. {"genome_id": "83332.12"}`),
				}, "filters_json"),
				Collection: col.Name,
				Family:     col.Family,
				Kind:       KindFilters,
			},
			&Tool{
				Name:        KeywordName(col.Name),
				Description: fmt.Sprintf("Search %s records containing a keyword.", col.Name),
				InputSchema: objectSchema(map[string]any{
					"keyword": prop("string", "The keyword to search for"),
				}, "keyword"),
				Collection: col.Name,
				Family:     col.Family,
				Kind:       KindKeyword,
			},
			&Tool{
				Name:        AllName(col.Name),
				Description: fmt.Sprintf("Get all %s records.", col.Name),
				InputSchema: objectSchema(map[string]any{}),
				Collection:  col.Name,
				Family:      col.Family,
				Kind:        KindAll,
			},
		)
	}
	out = append(out, &Tool{
		Name:        DirectTool,
		Description: "Query BV-BRC data directly using a core name and an RQL filter string.",
		InputSchema: objectSchema(map[string]any{
			"core":       prop("string", `The core/collection name (e.g. "genome", "genome_feature")`),
			"filter_str": prop("string", `RQL filter string (e.g. "eq(genome_id,123.45)")`),
		}, "core"),
		Kind: KindDirect,
	})
	return out
}

func byDescription(col *catalog.Collection, acc catalog.Accessor) string {
	switch acc.Match {
	case catalog.MatchRange, catalog.MatchSpan:
		return fmt.Sprintf("Get %s records with %s between %s and %s (inclusive).", col.Name, strings.TrimSuffix(acc.Name, "_range"), acc.MinParam, acc.MaxParam)
	}
	return fmt.Sprintf("Get %s records by %s.", col.Name, acc.Name)
}

func bySchema(acc catalog.Accessor) map[string]any {
	typ := jsonType(acc.ValueType())
	params := acc.Params()
	if acc.Arity() == 2 {
		return objectSchema(map[string]any{
			params[0]: prop(typ, "Lower bound, * for open"),
			params[1]: prop(typ, "Upper bound, * for open (optional)"),
		}, params[0])
	}
	return objectSchema(map[string]any{
		params[0]: prop(typ, "The "+acc.Name+" to query"),
	}, params[0])
}

// jsonType maps catalog value types to schema types. Numeric and boolean
// values also accept strings since clients often send everything quoted;
// range bounds need "*" anyway.
func jsonType(valueType string) any {
	switch valueType {
	case catalog.TypeInteger:
		return []string{"integer", "string"}
	case catalog.TypeNumber:
		return []string{"number", "string"}
	case catalog.TypeBoolean:
		return []string{"boolean", "string"}
	}
	return "string"
}

func prop(typ any, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

// objectSchema adds the shared limit/select/sort parameters.
func objectSchema(props map[string]any, required ...string) map[string]any {
	props["limit"] = map[string]any{"type": "integer", "minimum": 1, "maximum": math.MaxInt32, "description": "Rows per page sent to the API"}
	props["select"] = prop("string", "Comma-separated list of fields to return")
	props["sort"] = prop("string", `Sort clause, e.g. "genome_name asc"`)
	props["max_results"] = map[string]any{"type": "integer", "minimum": 0, "maximum": math.MaxInt32, "description": "Stop after this many records (0 for all)"}
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		sort.Strings(required)
		s["required"] = required
	}
	return s
}
