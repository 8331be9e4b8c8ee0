// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bigquery

import (
	"context"
	"log/slog"

	"github.com/bqkit/gcloud/internal/trace"
)

// A Cursor is one decoded page of rows. It is immutable: NextPage returns a
// new Cursor and leaves the receiver unchanged, so a Cursor may be kept and
// advanced again later.
type Cursor struct {
	src       pageSource
	schema    Schema
	rows      []Row
	token     string
	totalRows uint64
	// maxResults and setMaxResults carry the page size to every later fetch.
	maxResults    int64
	setMaxResults bool
	requestLimit  int
	logger        *slog.Logger
}

// fetchCursor fetches and decodes the page selected by p.
func fetchCursor(ctx context.Context, src pageSource, p pageParams, conf *readConfig, logger *slog.Logger) (*Cursor, error) {
	page, err := src.fetchPage(ctx, p)
	if err != nil {
		return nil, err
	}
	rows, err := convertRows(page.rows, page.schema)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "bigquery: fetched page", "rows", len(rows), "hasNext", page.nextToken != "")
	trace.TracePrintf(ctx, map[string]interface{}{"rows": len(rows), "hasNext": page.nextToken != ""}, "bigquery: fetched page")
	return &Cursor{
		src:           src,
		schema:        page.schema,
		rows:          rows,
		token:         page.nextToken,
		totalRows:     page.totalRows,
		maxResults:    conf.maxResults,
		setMaxResults: conf.setMaxResults,
		requestLimit:  conf.requestLimit,
		logger:        logger,
	}, nil
}

// Rows returns the decoded rows of this page, in backend order.
func (c *Cursor) Rows() []Row {
	return append([]Row(nil), c.rows...)
}

// Schema returns the schema the rows were decoded with.
func (c *Cursor) Schema() Schema {
	return c.schema
}

// Token returns the opaque token of the next page, or "" if this is the
// last page.
func (c *Cursor) Token() string {
	return c.token
}

// HasNext reports whether another page follows this one.
func (c *Cursor) HasNext() bool {
	return c.token != ""
}

// TotalRows returns the total number of rows in the result, as last reported
// by the backend.
func (c *Cursor) TotalRows() uint64 {
	return c.totalRows
}

// Exhausted reports whether the cursor holds no rows and no page follows.
func (c *Cursor) Exhausted() bool {
	return c.token == "" && len(c.rows) == 0
}

// NextPage fetches the page after c. On the last page it returns an
// exhausted Cursor without contacting the backend. On error, c is still
// usable and NextPage may be called again.
func (c *Cursor) NextPage(ctx context.Context) (*Cursor, error) {
	if c.token == "" {
		return &Cursor{
			src:           c.src,
			schema:        c.schema,
			totalRows:     c.totalRows,
			maxResults:    c.maxResults,
			setMaxResults: c.setMaxResults,
			requestLimit:  c.requestLimit,
			logger:        c.logger,
		}, nil
	}
	p := pageParams{
		pageToken:     c.token,
		maxResults:    c.maxResults,
		setMaxResults: c.setMaxResults,
	}
	conf := &readConfig{maxResults: c.maxResults, setMaxResults: c.setMaxResults, requestLimit: c.requestLimit}
	return fetchCursor(ctx, c.src, p, conf, c.logger)
}

// Iterator returns an iterator over the rows of c and every page after it.
// The fetch that produced c counts toward the request limit. Page size and
// request limit default to those of the read that produced c; opts may
// override them with WithMaxResults and WithRequestLimit. Other options
// select the first page and have no effect here.
func (c *Cursor) Iterator(ctx context.Context, opts ...ReadOption) *RowIterator {
	conf := &readConfig{
		maxResults:    c.maxResults,
		setMaxResults: c.setMaxResults,
		requestLimit:  c.requestLimit,
	}
	for _, o := range opts {
		o(conf)
	}
	start := *c
	start.maxResults, start.setMaxResults = conf.maxResults, conf.setMaxResults
	start.requestLimit = conf.requestLimit
	return &RowIterator{
		ctx:     ctx,
		state:   stateHasPage,
		cur:     &start,
		rows:    c.rows,
		fetches: 1,
		limit:   conf.requestLimit,
	}
}
