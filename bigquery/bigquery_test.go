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
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bqkit/gcloud/internal/testutil"
	"github.com/google/go-cmp/cmp"
	gax "github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2"
	bq "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/option"
)

// fakeBackend answers the REST calls the client makes, recording the
// requests it sees.
type fakeBackend struct {
	t *testing.T

	mu           sync.Mutex
	requests     []string
	badHeaders   []string
	listFailures int
	inserted     *bq.Job
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := r.URL.Query()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path+" token="+q.Get("pageToken")+" max="+q.Get("maxResults"))
	if got := r.Header.Get("Authorization"); got != "Bearer tok" {
		b.badHeaders = append(b.badHeaders, "Authorization: "+got)
	}
	if got := r.Header.Get("x-goog-api-client"); !strings.Contains(got, "gccl/") {
		b.badHeaders = append(b.badHeaders, "x-goog-api-client: "+got)
	}

	var res interface{}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/projects/p/jobs/j":
		res = &bq.Job{
			JobReference: &bq.JobReference{ProjectId: "p", JobId: "j", Location: "US"},
			Configuration: &bq.JobConfiguration{
				Query: &bq.JobConfigurationQuery{Query: "SELECT name, age FROM people"},
			},
			Status: &bq.JobStatus{State: "DONE"},
		}
	case r.Method == http.MethodGet && r.URL.Path == "/projects/p/queries/j":
		resp := &bq.GetQueryResultsResponse{
			JobComplete: true,
			Schema:      twoColumnSchema(),
			TotalRows:   3,
		}
		switch {
		case q.Get("maxResults") == "0":
		case q.Get("pageToken") == "":
			resp.Rows = []*bq.TableRow{bqRow("Heidi", "36"), bqRow("Aaron", "42")}
			resp.PageToken = "t1"
		default:
			resp.Rows = []*bq.TableRow{bqRow("Sally", nil)}
		}
		res = resp
	case r.Method == http.MethodGet && r.URL.Path == "/projects/p/datasets/d/tables/t":
		res = &bq.Table{Schema: twoColumnSchema()}
	case r.Method == http.MethodGet && r.URL.Path == "/projects/p/datasets/d/tables/t/data":
		if b.listFailures > 0 {
			b.listFailures--
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error": {"code": 503, "message": "try again", "errors": [{"reason": "backendError", "message": "try again"}]}}`))
			return
		}
		res = &bq.TableDataList{Rows: []*bq.TableRow{bqRow("Heidi", "36")}, TotalRows: 1}
	case r.Method == http.MethodPost && r.URL.Path == "/projects/p/jobs":
		job := &bq.Job{}
		if err := json.NewDecoder(r.Body).Decode(job); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.inserted = job
		job.Status = &bq.JobStatus{State: "PENDING"}
		res = job
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		b.t.Errorf("encoding response: %v", err)
	}
}

func twoColumnSchema() *bq.TableSchema {
	return &bq.TableSchema{Fields: []*bq.TableFieldSchema{
		{Name: "name", Type: "STRING", Mode: "REQUIRED"},
		{Name: "age", Type: "INT64"},
	}}
}

func newTestServerClient(t *testing.T, opts ...option.ClientOption) (*Client, *fakeBackend) {
	t.Helper()
	ctx := context.Background()
	backend := &fakeBackend{t: t}
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	opts = append([]option.ClientOption{
		option.WithHTTPClient(hc),
		option.WithEndpoint(ts.URL + "/"),
	}, opts...)
	c, err := NewClient(ctx, "p", opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	c.SetRetry(WithBackoff(gax.Backoff{Initial: time.Millisecond, Max: time.Millisecond, Multiplier: 1}))
	return c, backend
}

func TestNewClientRequiresProject(t *testing.T) {
	if _, err := NewClient(context.Background(), ""); err == nil {
		t.Error("got nil error for an empty project ID")
	}
}

func TestClientQueryResults(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, backend := newTestServerClient(t, option.WithLogger(logger))
	if c.Project() != "p" {
		t.Errorf("got project %q", c.Project())
	}

	job, err := c.JobFromID(ctx, "j")
	if err != nil {
		t.Fatal(err)
	}
	cur, err := job.Read(ctx, WithMaxResults(2))
	if err != nil {
		t.Fatal(err)
	}
	var got []Row
	for row, err := range cur.Iterator(ctx).All() {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, row)
	}
	want := []Row{
		{"name": "Heidi", "age": int64(36)},
		{"name": "Aaron", "age": int64(42)},
		{"name": "Sally", "age": nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	wantRequests := []string{
		"GET /projects/p/jobs/j token= max=",
		"GET /projects/p/queries/j token= max=0",
		"GET /projects/p/queries/j token= max=2",
		"GET /projects/p/queries/j token=t1 max=2",
	}
	if diff := cmp.Diff(wantRequests, backend.requests); diff != "" {
		t.Errorf("requests (-want +got):\n%s", diff)
	}
	if len(backend.badHeaders) > 0 {
		t.Errorf("bad headers: %v", backend.badHeaders)
	}
	if !strings.Contains(logs.String(), "jobs.getQueryResults") {
		t.Errorf("no debug record for jobs.getQueryResults in %q", logs.String())
	}
}

func TestClientTableReadRetriesAndTraces(t *testing.T) {
	ctx := context.Background()
	te := testutil.NewOpenTelemetryTestExporter()
	defer te.Unregister(ctx)

	c, backend := newTestServerClient(t)
	backend.listFailures = 1
	spanCtx, span := otel.Tracer("test").Start(ctx, "read-table")
	cur, err := c.Dataset("d").Table("t").Read(spanCtx)
	span.End()
	if err != nil {
		t.Fatal(err)
	}
	want := []Row{{"name": "Heidi", "age": int64(36)}}
	if diff := cmp.Diff(want, cur.Rows()); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
	if cur.HasNext() {
		t.Error("got a next page from a single-page table")
	}

	backend.mu.Lock()
	lists := 0
	for _, r := range backend.requests {
		if strings.HasPrefix(r, "GET /projects/p/datasets/d/tables/t/data") {
			lists++
		}
	}
	backend.mu.Unlock()
	if lists != 2 {
		t.Errorf("got %d tabledata.list requests, want 2", lists)
	}

	names := te.SpanNames()
	for _, want := range []string{"bigquery.tables.get", "bigquery.tabledata.list", "read-table"} {
		if !slices.Contains(names, want) {
			t.Errorf("span %q not recorded; got %v", want, names)
		}
	}
	var events []string
	for _, s := range te.Spans() {
		if s.Name == "read-table" {
			for _, e := range s.Events {
				events = append(events, e.Name)
			}
		}
	}
	if !slices.Contains(events, "bigquery: fetched page") {
		t.Errorf("got events %v on the caller's span, want a fetched page event", events)
	}
}

func TestClientLoad(t *testing.T) {
	defer fixRandomID("RANDOM")()
	ctx := context.Background()
	c, backend := newTestServerClient(t)
	c.Location = "EU"

	loader := c.Dataset("d").Table("t").LoaderFrom(NewGCSReference("gs://bucket/people.csv"))
	loader.WriteDisposition = "truncate"
	loader.SkipLeadingRows = 1
	job, err := loader.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if job.ID() != "RANDOM" || job.Location() != "EU" {
		t.Errorf("got job %q in %q", job.ID(), job.Location())
	}
	if s := job.LastStatus(); s == nil || s.State != Pending {
		t.Errorf("got status %+v, want pending", s)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.inserted == nil {
		t.Fatal("no job inserted")
	}
	load := backend.inserted.Configuration.Load
	if load.SourceFormat != "CSV" || load.WriteDisposition != "WRITE_TRUNCATE" || load.SkipLeadingRows != 1 {
		t.Errorf("got load config %+v", load)
	}
	if diff := cmp.Diff([]string{"gs://bucket/people.csv"}, load.SourceUris); diff != "" {
		t.Errorf("source URIs (-want +got):\n%s", diff)
	}
}
