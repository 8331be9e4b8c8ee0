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
	"fmt"
	"sync"
	"time"

	bq "google.golang.org/api/bigquery/v2"
)

const (
	opGetQueryResults = "jobs.getQueryResults"
	opListTableData   = "tabledata.list"
	opGetTable        = "tables.get"
)

// rawPage is one undecoded page of rows together with the schema that
// decodes them.
type rawPage struct {
	schema    Schema
	rows      []*bq.TableRow
	nextToken string
	totalRows uint64
}

// A pageSource fetches pages of rows from one backend. Failures are reported
// as *SourceFetchError.
type pageSource interface {
	fetchPage(ctx context.Context, p pageParams) (*rawPage, error)
}

// queryResultSource reads pages from jobs.getQueryResults. Every response
// carries the result schema.
type queryResultSource struct {
	s         service
	projectID string
	jobID     string
	location  string
}

func (src *queryResultSource) resource() string {
	return src.projectID + ":" + src.jobID
}

// probe asks for zero rows, which waits up to timeout for the job and returns
// its schema without transferring data.
func (src *queryResultSource) probe(ctx context.Context, timeout time.Duration) (*rawPage, error) {
	return src.get(ctx, &queryResultsParams{
		pageParams: pageParams{maxResults: 0, setMaxResults: true},
		location:   src.location,
		timeout:    timeout,
	})
}

func (src *queryResultSource) fetchPage(ctx context.Context, p pageParams) (*rawPage, error) {
	return src.get(ctx, &queryResultsParams{pageParams: p, location: src.location})
}

func (src *queryResultSource) get(ctx context.Context, p *queryResultsParams) (*rawPage, error) {
	res, err := src.s.getQueryResults(ctx, src.projectID, src.jobID, p)
	if err != nil {
		return nil, &SourceFetchError{Op: opGetQueryResults, Resource: src.resource(), Err: err}
	}
	if !res.JobComplete {
		return nil, &SourceFetchError{Op: opGetQueryResults, Resource: src.resource(), Err: ErrJobIncomplete}
	}
	schema := bqToSchema(res.Schema)
	if err := schema.validate(); err != nil {
		return nil, &SourceFetchError{Op: opGetQueryResults, Resource: src.resource(), Err: fmt.Errorf("malformed schema: %w", err)}
	}
	return &rawPage{
		schema:    schema,
		rows:      res.Rows,
		nextToken: res.PageToken,
		totalRows: res.TotalRows,
	}, nil
}

// tableRowSource reads pages from tabledata.list, which returns rows without
// a schema. A schema not known up front is fetched with tables.get alongside
// the first page, then kept for later pages.
type tableRowSource struct {
	s     service
	table *bq.TableReference

	mu         sync.Mutex
	schema     Schema
	haveSchema bool
}

func (src *tableRowSource) knownSchema() (Schema, bool) {
	src.mu.Lock()
	defer src.mu.Unlock()
	return src.schema, src.haveSchema
}

func (src *tableRowSource) fetchPage(ctx context.Context, p pageParams) (*rawPage, error) {
	schema, ok := src.knownSchema()
	type schemaResult struct {
		schema Schema
		err    error
	}
	var schemac chan schemaResult
	if !ok {
		schemac = make(chan schemaResult, 1)
		go func() {
			ts, err := src.s.getTableSchema(ctx, src.table)
			schemac <- schemaResult{bqToSchema(ts), err}
		}()
	}
	res, err := src.s.listTableData(ctx, src.table, &p)
	if schemac != nil {
		sr := <-schemac
		if sr.err != nil {
			return nil, &SourceFetchError{Op: opGetTable, Resource: tableResource(src.table), Err: sr.err}
		}
		if verr := sr.schema.validate(); verr != nil {
			return nil, &SourceFetchError{Op: opGetTable, Resource: tableResource(src.table), Err: fmt.Errorf("malformed schema: %w", verr)}
		}
		schema = sr.schema
		src.mu.Lock()
		src.schema, src.haveSchema = schema, true
		src.mu.Unlock()
	}
	if err != nil {
		return nil, &SourceFetchError{Op: opListTableData, Resource: tableResource(src.table), Err: err}
	}
	return &rawPage{
		schema:    schema,
		rows:      res.Rows,
		nextToken: res.PageToken,
		totalRows: uint64(res.TotalRows),
	}, nil
}
