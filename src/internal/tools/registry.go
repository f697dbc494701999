package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bvbrcdata/src/internal/catalog"
	"bvbrcdata/src/internal/dataquery"
	"bvbrcdata/src/internal/metrics"
	"bvbrcdata/src/internal/qexpr"
	"bvbrcdata/src/internal/render"
)

// Result is the text a tool call hands back. IsError marks failures that
// are reported to the caller as content rather than as protocol errors.
type Result struct {
	Text    string
	IsError bool
}

// Registry dispatches tool calls to a dataquery.Service.
type Registry struct {
	svc      *dataquery.Service
	tools    []*Tool
	byName   map[string]*Tool
	maxItems int
	logger   *slog.Logger
}

type RegistryOption func(*Registry)

// WithMaxItems sets how many records text results show.
func WithMaxItems(n int) RegistryOption { return func(r *Registry) { r.maxItems = n } }

func WithLogger(l *slog.Logger) RegistryOption { return func(r *Registry) { r.logger = l } }

func NewRegistry(svc *dataquery.Service, opts ...RegistryOption) *Registry {
	r := &Registry{svc: svc, maxItems: render.DefaultMaxItems, logger: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	r.tools = Build(svc.Catalog())
	r.byName = make(map[string]*Tool, len(r.tools))
	for _, t := range r.tools {
		r.byName[t.Name] = t
	}
	return r
}

// Catalog returns the collections behind the tools.
func (r *Registry) Catalog() *catalog.Catalog { return r.svc.Catalog() }

// Tools lists every tool in registration order.
func (r *Registry) Tools() []*Tool { return r.tools }

// Lookup finds a tool by name.
func (r *Registry) Lookup(name string) (*Tool, error) {
	t, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTool, name)
	}
	return t, nil
}

// Call runs a tool. The error is non-nil only for unknown tools; query and
// argument failures come back as a Result with IsError set.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (Result, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return Result{}, err
	}
	start := time.Now()
	res := r.call(ctx, t, args)
	label := t.Collection
	if label == "" {
		label = string(t.Kind)
	}
	outcome := "ok"
	if res.IsError {
		outcome = "error"
		r.logger.Warn("tool call failed", "tool", t.Name, "elapsed", time.Since(start))
	} else {
		r.logger.Debug("tool call", "tool", t.Name, "elapsed", time.Since(start))
	}
	metrics.ToolCalls.WithLabelValues(label, outcome).Inc()
	return res, nil
}

func (r *Registry) call(ctx context.Context, t *Tool, args map[string]any) Result {
	if err := t.Validate(args); err != nil {
		return r.failure(t, err)
	}
	opts, err := dataquery.OptionsFromMap(args)
	if err != nil {
		return r.failure(t, err)
	}
	// the endpoint is fixed by server configuration
	opts.BaseURL, opts.Headers = "", nil

	var res *dataquery.Result
	switch t.Kind {
	case KindBy:
		params := t.Accessor.Params()
		values := []any{args[params[0]]}
		if len(params) == 2 {
			if v, ok := args[params[1]]; ok {
				values = append(values, v)
			}
		}
		res, err = r.svc.By(ctx, t.Collection, t.Accessor.Name, values, opts)
	case KindFilters:
		raw, _ := args["filters_json"].(string)
		filters, perr := qexpr.ParseFilters([]byte(raw))
		if perr != nil {
			return Result{Text: fmt.Sprintf("Error parsing filters JSON: %v", perr), IsError: true}
		}
		res, err = r.svc.ByFilters(ctx, t.Collection, filters, opts)
	case KindKeyword:
		kw, _ := args["keyword"].(string)
		res, err = r.svc.ByKeyword(ctx, t.Collection, kw, opts)
	case KindAll:
		res, err = r.svc.All(ctx, t.Collection, opts)
	case KindDirect:
		core, _ := args["core"].(string)
		rql, _ := args["filter_str"].(string)
		res, err = r.svc.Direct(ctx, core, rql, opts)
	default:
		err = fmt.Errorf("unsupported tool kind %q", t.Kind)
	}
	if err != nil {
		return r.failure(t, err)
	}
	if t.Kind != KindDirect && res.Family == catalog.FamilyStream {
		return Result{Text: indentJSON(map[string]any{"count": res.Count, "results": res.Records})}
	}
	return Result{Text: render.FormatResult(res.Records, r.maxItems)}
}

func (r *Registry) failure(t *Tool, err error) Result {
	subject := t.Collection
	switch t.Kind {
	case KindBy:
		subject += " by " + t.Accessor.Name
	case KindFilters:
		subject += " by filters"
	case KindKeyword:
		subject += " by keyword"
	case KindDirect:
		subject = "direct"
	}
	msg := fmt.Sprintf("Error querying %s: %v", subject, err)
	if t.Kind != KindDirect && t.Family == catalog.FamilyStream {
		return Result{Text: indentJSON(map[string]any{"error": msg}), IsError: true}
	}
	return Result{Text: msg, IsError: true}
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(b)
}
