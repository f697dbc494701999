package solr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bvbrcdata/src/internal/metrics"
	"bvbrcdata/src/internal/sanitize"
)

// DefaultRows is the page size used when a request does not set one.
const DefaultRows = 1000

const firstCursor = "*"

// StreamRequest describes a cursor-paged query against one core.
type StreamRequest struct {
	Query  string   // Solr q expression, *:* when empty
	Rows   int      // page size
	Sort   string   // e.g. "genome_name asc"; the key is appended as tiebreaker
	Fields []string // fl projection, all stored fields when empty
	Key    string   // unique key of the core, "id" when empty
}

type solrPage struct {
	Response struct {
		NumFound int64    `json:"numFound"`
		Docs     []Record `json:"docs"`
	} `json:"response"`
	NextCursorMark string `json:"nextCursorMark"`
}

// Pager walks a result set page by page using Solr cursor marks.
// A Pager is not safe for concurrent use.
type Pager struct {
	c      *Client
	core   string
	form   url.Values
	cursor string
	done   bool
	found  int64
	pages  int
}

// StreamAllSolr prepares a cursor-paged query. No request is made until the
// pager is read.
func (c *Client) StreamAllSolr(core string, req StreamRequest) *Pager {
	rows := req.Rows
	if rows <= 0 {
		rows = DefaultRows
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		key = "id"
	}
	q := strings.TrimSpace(req.Query)
	if q == "" {
		q = "*:*"
	}
	form := url.Values{}
	form.Set("q", q)
	form.Set("rows", strconv.Itoa(rows))
	form.Set("sort", CursorSort(req.Sort, key))
	if fields := sanitize.CleanFields(req.Fields); len(fields) > 0 {
		form.Set("fl", strings.Join(fields, ","))
	}
	return &Pager{c: c, core: core, form: form, cursor: firstCursor, found: -1}
}

// NextPage fetches the next page. It returns io.EOF once the result set is exhausted.
func (p *Pager) NextPage(ctx context.Context) ([]Record, error) {
	if p.done {
		return nil, io.EOF
	}
	form := make(url.Values, len(p.form)+1)
	for k, v := range p.form {
		form[k] = v
	}
	form.Set("cursorMark", p.cursor)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.c.coreURL(p.core), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("bvbrc: %s: %w", p.core, err)
	}
	req.Header.Set("Content-Type", solrQueryType)
	body, err := p.c.send(req, p.core, solrJSON)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	var page solrPage
	if err := json.NewDecoder(body).Decode(&page); err != nil {
		return nil, fmt.Errorf("bvbrc: %s: decode page: %w", p.core, err)
	}
	p.pages++
	p.found = page.Response.NumFound
	metrics.PagesFetched.WithLabelValues(p.core).Inc()
	next := page.NextCursorMark
	if len(page.Response.Docs) == 0 || next == "" || next == p.cursor {
		p.done = true
	}
	p.cursor = next
	if len(page.Response.Docs) == 0 {
		return nil, io.EOF
	}
	return page.Response.Docs, nil
}

// All yields every record in server order. Iteration stops at the first error,
// which is yielded with a nil record.
func (p *Pager) All(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			docs, err := p.NextPage(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			for _, d := range docs {
				if !yield(d, nil) {
					return
				}
			}
		}
	}
}

// NumFound is the server-reported total of the last page read, -1 before the first page.
func (p *Pager) NumFound() int64 { return p.found }

// Pages is the number of pages fetched so far.
func (p *Pager) Pages() int { return p.pages }

// Collect drains the pager into a slice, keeping server order. max <= 0
// collects everything; otherwise collection stops after max records.
func Collect(ctx context.Context, p *Pager, max int) ([]Record, error) {
	var out []Record
	for rec, err := range p.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out, nil
}

// CursorSort makes a sort clause usable with cursorMark: every clause gets an
// explicit direction and the unique key is appended unless already present.
func CursorSort(sort, key string) string {
	var clauses []string
	hasKey := false
	for _, tok := range strings.Split(sort, ",") {
		f := strings.Fields(tok)
		if len(f) == 0 {
			continue
		}
		dir := "asc"
		if len(f) > 1 && strings.EqualFold(f[1], "desc") {
			dir = "desc"
		}
		if f[0] == key {
			hasKey = true
		}
		clauses = append(clauses, f[0]+" "+dir)
	}
	if !hasKey {
		clauses = append(clauses, key+" asc")
	}
	return strings.Join(clauses, ",")
}
