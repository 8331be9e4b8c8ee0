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
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	bq "google.golang.org/api/bigquery/v2"
)

// fakeService answers backend calls from in-memory pages and records every
// call it receives.
type fakeService struct {
	mu sync.Mutex

	schema     *bq.TableSchema
	incomplete bool // the probe reports the job as still running
	probeErr   error
	queryPages map[string]*bq.GetQueryResultsResponse // keyed by page token
	tablePages map[string]*bq.TableDataList           // keyed by page token
	job        *bq.Job
	// Errors returned, one per call, before pages are served.
	queryErrs []error
	listErrs  []error

	probes      []queryResultsParams
	queryCalls  []queryResultsParams
	listCalls   []pageParams
	listTables  []*bq.TableReference
	schemaCalls int
	inserted    []*bq.Job
}

func (f *fakeService) getQueryResults(_ context.Context, _, _ string, p *queryResultsParams) (*bq.GetQueryResultsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.setMaxResults && p.maxResults == 0 {
		f.probes = append(f.probes, *p)
		if f.probeErr != nil {
			return nil, f.probeErr
		}
		return &bq.GetQueryResultsResponse{JobComplete: !f.incomplete, Schema: f.schema}, nil
	}
	f.queryCalls = append(f.queryCalls, *p)
	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		return nil, err
	}
	page, ok := f.queryPages[p.pageToken]
	if !ok {
		return nil, fmt.Errorf("no query page for token %q", p.pageToken)
	}
	res := *page
	res.JobComplete = true
	res.Schema = f.schema
	return &res, nil
}

func (f *fakeService) listTableData(_ context.Context, table *bq.TableReference, p *pageParams) (*bq.TableDataList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, *p)
	f.listTables = append(f.listTables, table)
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		return nil, err
	}
	page, ok := f.tablePages[p.pageToken]
	if !ok {
		return nil, fmt.Errorf("no table page for token %q", p.pageToken)
	}
	return page, nil
}

func (f *fakeService) getTableSchema(context.Context, *bq.TableReference) (*bq.TableSchema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemaCalls++
	return f.schema, nil
}

func (f *fakeService) getJob(_ context.Context, projectID, jobID, location string) (*bq.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.job == nil {
		return nil, fmt.Errorf("no job %s", jobID)
	}
	return f.job, nil
}

func (f *fakeService) insertJob(_ context.Context, _ string, job *bq.Job) (*bq.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, job)
	return job, nil
}

func testClient(s service) *Client {
	return &Client{
		projectID: "project-id",
		s:         s,
		retry:     defaultRetryConfig(),
		logger:    slog.New(slog.DiscardHandler),
		schemas:   newSchemaCache(),
	}
}

func peopleSchema() *bq.TableSchema {
	return &bq.TableSchema{Fields: []*bq.TableFieldSchema{
		{Name: "name", Type: "STRING", Mode: "REQUIRED"},
		{Name: "age", Type: "INTEGER"},
		{Name: "score", Type: "FLOAT"},
		{Name: "active", Type: "BOOLEAN"},
		{Name: "avatar", Type: "BYTES"},
		{Name: "started_at", Type: "TIMESTAMP"},
		{Name: "duration", Type: "TIME"},
		{Name: "target_end", Type: "DATETIME"},
		{Name: "birthday", Type: "DATE"},
	}}
}

func bqRow(vals ...interface{}) *bq.TableRow {
	r := &bq.TableRow{}
	for _, v := range vals {
		r.F = append(r.F, &bq.TableCell{V: v})
	}
	return r
}

func heidiRow() *bq.TableRow {
	return bqRow("Heidi", "36", "7.65", "true", "aW1hZ2UgZGF0YQ==", "1.4826708E9", "04:00:00", "2017-01-01 00:00:00", "1968-10-20")
}

func aaronRow() *bq.TableRow {
	return bqRow("Aaron", "42", "8.15", "false", nil, nil, "04:32:10.555555", nil, nil)
}

func sallyRow() *bq.TableRow {
	return bqRow("Sally", nil, nil, nil, nil, nil, nil, nil, nil)
}

func heidiValues() Row {
	return Row{
		"name":       "Heidi",
		"age":        int64(36),
		"score":      7.65,
		"active":     true,
		"avatar":     bytes.NewReader([]byte("image data")),
		"started_at": time.Date(2016, 12, 25, 13, 0, 0, 0, time.UTC),
		"duration":   civil.Time{Hour: 4},
		"target_end": civil.DateTime{Date: civil.Date{Year: 2017, Month: 1, Day: 1}},
		"birthday":   civil.Date{Year: 1968, Month: 10, Day: 20},
	}
}

func aaronValues() Row {
	return Row{
		"name":       "Aaron",
		"age":        int64(42),
		"score":      8.15,
		"active":     false,
		"avatar":     nil,
		"started_at": nil,
		"duration":   civil.Time{Hour: 4, Minute: 32, Second: 10, Nanosecond: 555555000},
		"target_end": nil,
		"birthday":   nil,
	}
}

func sallyValues() Row {
	return Row{
		"name":       "Sally",
		"age":        nil,
		"score":      nil,
		"active":     nil,
		"avatar":     nil,
		"started_at": nil,
		"duration":   nil,
		"target_end": nil,
		"birthday":   nil,
	}
}

// valueOpts lets cmp compare decoded values that hide their state.
var valueOpts = []cmp.Option{
	cmp.Transformer("readerBytes", func(r *bytes.Reader) []byte {
		if r == nil {
			return nil
		}
		b := make([]byte, r.Size())
		r.ReadAt(b, 0)
		return b
	}),
	cmp.Comparer(func(a, b *big.Rat) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Cmp(b) == 0
	}),
}
