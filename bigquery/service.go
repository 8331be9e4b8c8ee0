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
	"time"

	"github.com/bqkit/gcloud/internal/trace"
	"go.opentelemetry.io/otel/attribute"
	bq "google.golang.org/api/bigquery/v2"
)

// service provides an internal abstraction to isolate the generated
// BigQuery API; most of this package uses this interface instead.
// The single implementation, *bigqueryService, contains all the knowledge
// of the generated BigQuery API.
type service interface {
	// Jobs
	getJob(ctx context.Context, projectID, jobID, location string) (*bq.Job, error)
	insertJob(ctx context.Context, projectID string, job *bq.Job) (*bq.Job, error)

	// Query results
	getQueryResults(ctx context.Context, projectID, jobID string, p *queryResultsParams) (*bq.GetQueryResultsResponse, error)

	// Tables
	listTableData(ctx context.Context, table *bq.TableReference, p *pageParams) (*bq.TableDataList, error)
	getTableSchema(ctx context.Context, table *bq.TableReference) (*bq.TableSchema, error)
}

// pageParams selects one page of rows. startIndex is only sent when there is
// no page token; maxResults only when setMaxResults is true, so that an
// explicit zero reaches the backend.
type pageParams struct {
	pageToken     string
	startIndex    uint64
	maxResults    int64
	setMaxResults bool
}

type queryResultsParams struct {
	pageParams
	location string
	// timeout bounds how long the backend waits for the job to complete
	// before answering.
	timeout time.Duration
}

type bigqueryService struct {
	s      *bq.Service
	retry  *retryConfig
	logger *slog.Logger
}

func (s *bigqueryService) getQueryResults(ctx context.Context, projectID, jobID string, p *queryResultsParams) (res *bq.GetQueryResultsResponse, err error) {
	ctx = trace.StartSpan(ctx, "bigquery.jobs.getQueryResults", attribute.String("bigquery.job.id", jobID))
	defer func() { trace.EndSpan(ctx, err) }()

	call := s.s.Jobs.GetQueryResults(projectID, jobID).Context(ctx)
	setClientHeader(call.Header())
	if p.location != "" {
		call.Location(p.location)
	}
	if p.pageToken != "" {
		call.PageToken(p.pageToken)
	} else if p.startIndex > 0 {
		call.StartIndex(p.startIndex)
	}
	if p.setMaxResults {
		call.MaxResults(p.maxResults)
	}
	if p.timeout > 0 {
		call.TimeoutMs(p.timeout.Milliseconds())
	}
	s.logger.DebugContext(ctx, "bigquery: jobs.getQueryResults",
		"project", projectID, "job", jobID, "pageToken", p.pageToken,
		"startIndex", p.startIndex, "maxResults", p.maxResults)
	err = runWithRetry(ctx, s.retry, func() (err error) {
		res, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *bigqueryService) listTableData(ctx context.Context, table *bq.TableReference, p *pageParams) (res *bq.TableDataList, err error) {
	ctx = trace.StartSpan(ctx, "bigquery.tabledata.list", attribute.String("bigquery.table", tableResource(table)))
	defer func() { trace.EndSpan(ctx, err) }()

	call := s.s.Tabledata.List(table.ProjectId, table.DatasetId, table.TableId).Context(ctx)
	setClientHeader(call.Header())
	if p.pageToken != "" {
		call.PageToken(p.pageToken)
	} else if p.startIndex > 0 {
		call.StartIndex(p.startIndex)
	}
	if p.setMaxResults {
		call.MaxResults(p.maxResults)
	}
	s.logger.DebugContext(ctx, "bigquery: tabledata.list",
		"table", tableResource(table), "pageToken", p.pageToken,
		"startIndex", p.startIndex, "maxResults", p.maxResults)
	err = runWithRetry(ctx, s.retry, func() (err error) {
		res, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *bigqueryService) getTableSchema(ctx context.Context, table *bq.TableReference) (schema *bq.TableSchema, err error) {
	ctx = trace.StartSpan(ctx, "bigquery.tables.get", attribute.String("bigquery.table", tableResource(table)))
	defer func() { trace.EndSpan(ctx, err) }()

	call := s.s.Tables.Get(table.ProjectId, table.DatasetId, table.TableId).Fields("schema").Context(ctx)
	setClientHeader(call.Header())
	var t *bq.Table
	err = runWithRetry(ctx, s.retry, func() (err error) {
		t, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return t.Schema, nil
}

func (s *bigqueryService) getJob(ctx context.Context, projectID, jobID, location string) (job *bq.Job, err error) {
	ctx = trace.StartSpan(ctx, "bigquery.jobs.get", attribute.String("bigquery.job.id", jobID))
	defer func() { trace.EndSpan(ctx, err) }()

	call := s.s.Jobs.Get(projectID, jobID).Context(ctx)
	setClientHeader(call.Header())
	if location != "" {
		call.Location(location)
	}
	err = runWithRetry(ctx, s.retry, func() (err error) {
		job, err = call.Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *bigqueryService) insertJob(ctx context.Context, projectID string, job *bq.Job) (res *bq.Job, err error) {
	ctx = trace.StartSpan(ctx, "bigquery.jobs.insert")
	defer func() { trace.EndSpan(ctx, err) }()

	call := s.s.Jobs.Insert(projectID, job).Context(ctx)
	setClientHeader(call.Header())
	if job.JobReference != nil {
		s.logger.DebugContext(ctx, "bigquery: jobs.insert", "project", projectID, "job", job.JobReference.JobId)
	}
	// Inserts with a job ID are idempotent.
	reasons := defaultRetryReasons
	if job.JobReference != nil && job.JobReference.JobId != "" {
		reasons = jobRetryReasons
	}
	err = runWithRetryExplicit(ctx, s.retry, func() (err error) {
		res, err = call.Do()
		return err
	}, reasons)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func tableResource(t *bq.TableReference) string {
	return t.ProjectId + ":" + t.DatasetId + "." + t.TableId
}
