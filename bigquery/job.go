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
	"errors"
	"fmt"

	bq "google.golang.org/api/bigquery/v2"
)

// A Job represents an operation which has been submitted to BigQuery for processing.
type Job struct {
	c         *Client
	projectID string
	jobID     string
	location  string

	isQuery     bool
	destination *bq.TableReference
	status      *JobStatus
}

// JobFromID creates a Job which refers to an existing BigQuery job. The job
// need not have been created by this package. For example, the job may have
// been created in the BigQuery console.
//
// For jobs whose location is other than "US" or "EU", set Client.Location or
// use JobFromIDLocation.
func (c *Client) JobFromID(ctx context.Context, id string) (*Job, error) {
	return c.JobFromIDLocation(ctx, id, c.Location)
}

// JobFromIDLocation creates a Job which refers to an existing BigQuery job.
// The job need not have been created by this package.
func (c *Client) JobFromIDLocation(ctx context.Context, id, location string) (*Job, error) {
	bqjob, err := c.s.getJob(ctx, c.projectID, id, location)
	if err != nil {
		return nil, err
	}
	return bqToJob(bqjob, c)
}

func bqToJob(q *bq.Job, c *Client) (*Job, error) {
	if q.JobReference == nil {
		return nil, errors.New("bigquery: job response has no job reference")
	}
	j := &Job{
		c:         c,
		projectID: q.JobReference.ProjectId,
		jobID:     q.JobReference.JobId,
		location:  q.JobReference.Location,
	}
	if q.Configuration != nil && q.Configuration.Query != nil {
		j.isQuery = true
		j.destination = q.Configuration.Query.DestinationTable
	}
	if q.Status != nil {
		j.status = bqToJobStatus(q.Status)
	}
	return j, nil
}

// ID returns the job's ID.
func (j *Job) ID() string {
	return j.jobID
}

// ProjectID returns the job's associated project.
func (j *Job) ProjectID() string {
	return j.projectID
}

// Location returns the location of the job.
func (j *Job) Location() string {
	return j.location
}

// LastStatus returns the most recently retrieved status of the job. The
// status is retrieved when a new job is created, or when JobFromID or
// Job.Status is called. Call Job.Status to get the most up-to-date
// information about a job.
func (j *Job) LastStatus() *JobStatus {
	return j.status
}

// Status retrieves the current status of the job from BigQuery. It fails if
// the Status could not be determined.
func (j *Job) Status(ctx context.Context) (*JobStatus, error) {
	bqjob, err := j.c.s.getJob(ctx, j.projectID, j.jobID, j.location)
	if err != nil {
		return nil, err
	}
	j.status = bqToJobStatus(bqjob.Status)
	return j.status, nil
}

// Read fetches the first page of the results of a completed query job.
//
// The first Read of a job issues a zero-row probe that waits for completion
// and returns the result schema. The schema is cached on the Client, and
// later reads of the same job skip the probe. When the job wrote its results
// to a destination table, pages are listed from that table; otherwise they
// are read from the job's results directly.
func (j *Job) Read(ctx context.Context, opts ...ReadOption) (*Cursor, error) {
	conf := newReadConfig(opts)
	src, err := j.pageSource(ctx, conf)
	if err != nil {
		return nil, err
	}
	return fetchCursor(ctx, src, conf.firstPage(), conf, j.c.logger)
}

// Rows returns an iterator over the rows of a completed query job. No
// backend call is made until the first call to Next.
func (j *Job) Rows(ctx context.Context, opts ...ReadOption) *RowIterator {
	conf := newReadConfig(opts)
	return &RowIterator{
		ctx:   ctx,
		state: stateInit,
		start: func(ctx context.Context) (*Cursor, error) { return j.Read(ctx, opts...) },
		limit: conf.requestLimit,
	}
}

func (j *Job) pageSource(ctx context.Context, conf *readConfig) (pageSource, error) {
	if !j.isQuery {
		return nil, fmt.Errorf("bigquery: job %s is not a query job", j.jobID)
	}
	qs := &queryResultSource{s: j.c.s, projectID: j.projectID, jobID: j.jobID, location: j.location}
	key := schemaCacheKey(j.projectID, j.location, j.jobID)
	rs, ok := j.c.schemas.get(key)
	if !ok {
		page, err := qs.probe(ctx, conf.timeout)
		if err != nil {
			return nil, err
		}
		rs = &resultSchema{schema: page.schema, destination: j.destination}
		j.c.schemas.put(key, rs)
		j.c.logger.DebugContext(ctx, "bigquery: cached result schema", "job", j.jobID, "fields", len(rs.schema))
	}
	if rs.destination == nil {
		return qs, nil
	}
	return &tableRowSource{s: j.c.s, table: rs.destination, schema: rs.schema, haveSchema: true}, nil
}

// State is one of a sequence of states that a Job progresses through as it is processed.
type State int

const (
	// StateUnspecified is the default JobIterator state.
	StateUnspecified State = iota
	// Pending is a state that describes that the job is pending.
	Pending
	// Running is a state that describes that the job is running.
	Running
	// Done is a state that describes that the job is done.
	Done
)

// JobStatus contains the current State of a job, and errors encountered while processing that job.
type JobStatus struct {
	State State

	err error
}

// Done reports whether the job has completed.
// After Done returns true, the Err method will return an error if the job completed unsuccessfully.
func (s *JobStatus) Done() bool {
	return s.State == Done
}

// Err returns the error that caused the job to complete unsuccessfully (if any).
func (s *JobStatus) Err() error {
	return s.err
}

var stateMap = map[string]State{"PENDING": Pending, "RUNNING": Running, "DONE": Done}

func bqToJobStatus(s *bq.JobStatus) *JobStatus {
	if s == nil {
		return &JobStatus{}
	}
	js := &JobStatus{State: stateMap[s.State]}
	if s.ErrorResult != nil {
		js.err = fmt.Errorf("bigquery: job failed: %s: %s", s.ErrorResult.Reason, s.ErrorResult.Message)
	}
	return js
}
