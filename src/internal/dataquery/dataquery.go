// Package dataquery is the accessor facade over the BV-BRC collections:
// query a collection by one of its fields, by free filters, by keyword, or
// fetch everything, always draining the cursor fully.
package dataquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bvbrcdata/src/internal/catalog"
	"bvbrcdata/src/internal/metrics"
	"bvbrcdata/src/internal/qexpr"
	"bvbrcdata/src/internal/solr"
)

// ErrArity is returned when an accessor gets the wrong number of values.
var ErrArity = errors.New("wrong number of values")

// Result is the outcome of one accessor call. Count always equals len(Records).
type Result struct {
	Collection string         `json:"collection" yaml:"collection"`
	Family     catalog.Family `json:"family" yaml:"family"`
	Expression string         `json:"expression" yaml:"expression"`
	Count      int            `json:"count" yaml:"count"`
	Records    []solr.Record  `json:"results" yaml:"results"`
}

// Service runs accessor calls against a Client.
type Service struct {
	cat          *catalog.Catalog
	client       *solr.Client
	defaultLimit int
	logger       *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithDefaultLimit sets the page size used when a call does not set Limit.
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func New(cat *catalog.Catalog, client *solr.Client, opts ...Option) *Service {
	s := &Service{cat: cat, client: client, defaultLimit: solr.DefaultRows, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Catalog returns the collections the service knows about.
func (s *Service) Catalog() *catalog.Catalog { return s.cat }

// DefaultLimit is the page size applied when Options.Limit is unset.
func (s *Service) DefaultLimit() int { return s.defaultLimit }

// Expression renders the query an accessor call would send, without any I/O.
// Range and span accessors take (min) or (min, max); the others take one value.
func (s *Service) Expression(collection, accessor string, args []any) (string, error) {
	col, err := s.cat.Lookup(collection)
	if err != nil {
		return "", err
	}
	acc, err := col.Accessor(accessor)
	if err != nil {
		return "", err
	}
	return accessorExpression(acc, args)
}

func accessorExpression(acc catalog.Accessor, args []any) (string, error) {
	if len(args) == 0 || len(args) > acc.Arity() {
		return "", fmt.Errorf("%s: %w: want %d, got %d", acc.Name, ErrArity, acc.Arity(), len(args))
	}
	switch acc.Match {
	case catalog.MatchExact:
		return qexpr.Exact(acc.Field, args[0])
	case catalog.MatchPhrase:
		return qexpr.Phrase(acc.Field, args[0])
	case catalog.MatchBool:
		return qexpr.Bool(acc.Field, args[0])
	case catalog.MatchRange, catalog.MatchSpan:
		var max any
		if len(args) > 1 {
			max = args[1]
		}
		if acc.Match == catalog.MatchSpan {
			return qexpr.Span(acc.Fields, args[0], max, acc.ValueType())
		}
		return qexpr.Range(acc.Field, args[0], max, acc.ValueType())
	}
	return "", fmt.Errorf("%s: unsupported match %q", acc.Name, acc.Match)
}

// By queries a collection through one of its catalog accessors.
func (s *Service) By(ctx context.Context, collection, accessor string, args []any, opts Options) (*Result, error) {
	col, err := s.cat.Lookup(collection)
	if err != nil {
		return nil, err
	}
	acc, err := col.Accessor(accessor)
	if err != nil {
		return nil, err
	}
	expr, err := accessorExpression(acc, args)
	if err != nil {
		return nil, fmt.Errorf("%s by %s: %w", col.Name, acc.Name, err)
	}
	return s.stream(ctx, "by_"+acc.Name, col, expr, opts)
}

// ByFilters ANDs the filters in order. At least one filter is required.
func (s *Service) ByFilters(ctx context.Context, collection string, filters qexpr.Filters, opts Options) (*Result, error) {
	col, err := s.cat.Lookup(collection)
	if err != nil {
		return nil, err
	}
	expr, err := filters.Expression()
	if err != nil {
		return nil, fmt.Errorf("%s by filters: %w", col.Name, err)
	}
	return s.stream(ctx, "by_filters", col, expr, opts)
}

// ByKeyword runs a wildcard keyword search; a blank keyword matches everything.
func (s *Service) ByKeyword(ctx context.Context, collection, keyword string, opts Options) (*Result, error) {
	col, err := s.cat.Lookup(collection)
	if err != nil {
		return nil, err
	}
	expr, err := qexpr.Keyword(keyword)
	if err != nil {
		return nil, fmt.Errorf("%s by keyword: %w", col.Name, err)
	}
	return s.stream(ctx, "by_keyword", col, expr, opts)
}

// All fetches every record of a collection.
func (s *Service) All(ctx context.Context, collection string, opts Options) (*Result, error) {
	col, err := s.cat.Lookup(collection)
	if err != nil {
		return nil, err
	}
	return s.stream(ctx, "all", col, qexpr.MatchAll, opts)
}

// Direct passes an RQL filter straight to a core. The core does not have to
// be in the catalog.
func (s *Service) Direct(ctx context.Context, core, rql string, opts Options) (*Result, error) {
	core = strings.TrimSpace(core)
	if core == "" {
		return nil, errors.New("direct query: empty core")
	}
	family := catalog.FamilyDelegate
	if col, err := s.cat.Lookup(core); err == nil {
		core, family = col.Name, col.Family
	}
	start := time.Now()
	client, err := s.client.WithOverrides(opts.overrides())
	if err != nil {
		return nil, err
	}
	recs, err := client.Query(ctx, core, rql, solr.QueryOptions{Limit: opts.Rows(s.defaultLimit), Select: opts.Select, Sort: opts.Sort})
	if err == nil && opts.MaxResults > 0 && len(recs) > opts.MaxResults {
		recs = recs[:opts.MaxResults]
	}
	if err == nil && recs == nil {
		recs = []solr.Record{}
	}
	s.observe(core, "direct", rql, len(recs), start, err)
	if err != nil {
		return nil, fmt.Errorf("%s direct: %w", core, err)
	}
	return &Result{Collection: core, Family: family, Expression: rql, Count: len(recs), Records: recs}, nil
}

func (s *Service) stream(ctx context.Context, op string, col *catalog.Collection, expr string, opts Options) (*Result, error) {
	start := time.Now()
	client, err := s.client.WithOverrides(opts.overrides())
	if err != nil {
		return nil, err
	}
	pager := client.StreamAllSolr(col.Name, solr.StreamRequest{
		Query:  expr,
		Rows:   opts.Rows(s.defaultLimit),
		Sort:   opts.Sort,
		Fields: opts.Select,
		Key:    col.Key,
	})
	recs, err := solr.Collect(ctx, pager, opts.MaxResults)
	s.observe(col.Name, op, expr, len(recs), start, err, "pages", pager.Pages(), "num_found", pager.NumFound())
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", col.Name, strings.ReplaceAll(op, "_", " "), err)
	}
	if recs == nil {
		recs = []solr.Record{}
	}
	return &Result{Collection: col.Name, Family: col.Family, Expression: expr, Count: len(recs), Records: recs}, nil
}

func (s *Service) observe(collection, op, expr string, n int, start time.Time, err error, extra ...any) {
	elapsed := time.Since(start)
	metrics.QueryDuration.WithLabelValues(collection, op, metrics.Outcome(err)).Observe(elapsed.Seconds())
	attrs := append([]any{"collection", collection, "op", op, "expression", expr}, extra...)
	if err != nil {
		s.logger.Warn("query failed", append(attrs, "error", err)...)
		return
	}
	metrics.RecordsReturned.WithLabelValues(collection).Add(float64(n))
	s.logger.Debug("query", append(attrs, "records", n, "elapsed", elapsed)...)
}
