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
	"maps"
	"strings"

	"github.com/google/uuid"
	bq "google.golang.org/api/bigquery/v2"
)

// TableCreateDisposition specifies the circumstances under which destination table will be created.
// Default is CreateIfNeeded.
type TableCreateDisposition string

const (
	// CreateIfNeeded will create the table if it does not already exist.
	// Tables are created atomically on successful completion of a job.
	CreateIfNeeded TableCreateDisposition = "CREATE_IF_NEEDED"

	// CreateNever ensures the table must already exist and will not be
	// automatically created.
	CreateNever TableCreateDisposition = "CREATE_NEVER"
)

// TableWriteDisposition specifies how existing data in a destination table is treated.
// Default is WriteAppend.
type TableWriteDisposition string

const (
	// WriteAppend will append to any existing data in the destination table.
	// Data is appended atomically on successful completion of a job.
	WriteAppend TableWriteDisposition = "WRITE_APPEND"

	// WriteTruncate overrides the existing data in the destination table.
	// Data is overwritten atomically on successful completion of a job.
	WriteTruncate TableWriteDisposition = "WRITE_TRUNCATE"

	// WriteEmpty fails writes if the destination table already contains data.
	WriteEmpty TableWriteDisposition = "WRITE_EMPTY"
)

var createDispositionNames = map[string]TableCreateDisposition{
	"create_if_needed": CreateIfNeeded,
	"createifneeded":   CreateIfNeeded,
	"if_needed":        CreateIfNeeded,
	"needed":           CreateIfNeeded,
	"create_never":     CreateNever,
	"createnever":      CreateNever,
	"never":            CreateNever,
}

var writeDispositionNames = map[string]TableWriteDisposition{
	"write_truncate": WriteTruncate,
	"writetruncate":  WriteTruncate,
	"truncate":       WriteTruncate,
	"write_append":   WriteAppend,
	"writeappend":    WriteAppend,
	"append":         WriteAppend,
	"write_empty":    WriteEmpty,
	"writeempty":     WriteEmpty,
	"empty":          WriteEmpty,
}

func dispositionKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

// normalize maps short forms such as "never" to the wire token.
func (d TableCreateDisposition) normalize() (TableCreateDisposition, error) {
	if d == "" {
		return "", nil
	}
	if n, ok := createDispositionNames[dispositionKey(string(d))]; ok {
		return n, nil
	}
	return "", &ConfigValidationError{Field: "CreateDisposition", Value: string(d), Reason: "unknown create disposition"}
}

// normalize maps short forms such as "truncate" to the wire token.
func (d TableWriteDisposition) normalize() (TableWriteDisposition, error) {
	if d == "" {
		return "", nil
	}
	if n, ok := writeDispositionNames[dispositionKey(string(d))]; ok {
		return n, nil
	}
	return "", &ConfigValidationError{Field: "WriteDisposition", Value: string(d), Reason: "unknown write disposition"}
}

// LoadConfig holds the configuration for a load job.
type LoadConfig struct {
	// Src is the source from which data will be loaded.
	Src LoadSource

	// Dst is the table into which the data will be loaded.
	Dst *Table

	// CreateDisposition specifies the circumstances under which the destination table will be created.
	// Short forms such as "needed" and "never" are accepted.
	// The default is CreateIfNeeded.
	CreateDisposition TableCreateDisposition

	// WriteDisposition specifies how existing data in the destination table is treated.
	// Short forms such as "append", "truncate" and "empty" are accepted.
	// The default is WriteAppend.
	WriteDisposition TableWriteDisposition

	// Format and parsing options for the source files.
	FileConfig

	// The labels associated with this job.
	Labels map[string]string

	// DryRun validates the job without running it.
	DryRun bool

	// ProjectionFields selects the entity properties to load from a
	// DatastoreBackup source. Other formats do not accept it.
	ProjectionFields []string
}

// A LoadSource represents a source of data that can be loaded into
// a BigQuery table.
//
// This package defines one LoadSource: GCSReference, for Google Cloud Storage
// objects.
type LoadSource interface {
	populateLoadConfig(*bq.JobConfigurationLoad) error
}

// JobIDConfig describes how to create an ID for a job.
type JobIDConfig struct {
	// JobID is the ID to use for the job. If empty, a random job ID will be generated.
	JobID string

	// If AddJobIDSuffix is true, then a random string will be appended to JobID.
	AddJobIDSuffix bool

	// Location is the location for the job.
	Location string
}

var randomIDFn = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// createJobRef creates a JobReference in the client's project. Without a
// client, the job runs in the destination table's project.
func (j *JobIDConfig) createJobRef(c *Client, dst *Table) *bq.JobReference {
	jr := &bq.JobReference{Location: j.Location}
	if c != nil {
		jr.ProjectId = c.projectID
		if jr.Location == "" {
			jr.Location = c.Location
		}
	} else {
		jr.ProjectId = dst.ProjectID
	}
	switch {
	case j.JobID == "":
		jr.JobId = randomIDFn()
	case j.AddJobIDSuffix:
		jr.JobId = j.JobID + "-" + randomIDFn()
	default:
		jr.JobId = j.JobID
	}
	return jr
}

// A Loader loads data from Google Cloud Storage into a BigQuery table.
type Loader struct {
	JobIDConfig
	LoadConfig
	c *Client
}

// LoaderFrom returns a Loader which can be used to load data into a BigQuery table.
// The returned Loader may optionally be further configured before its Run method is called.
func (t *Table) LoaderFrom(src LoadSource) *Loader {
	return &Loader{
		c: t.c,
		LoadConfig: LoadConfig{
			Src: src,
			Dst: t,
		},
	}
}

// Build returns the job request that Run would submit, without submitting
// it. It returns a *ConfigValidationError if the configuration is invalid.
func (l *Loader) Build() (*bq.Job, error) {
	if l.Dst == nil {
		return nil, &ConfigValidationError{Field: "Dst", Reason: "destination table is required"}
	}
	if l.Src == nil {
		return nil, &ConfigValidationError{Field: "Src", Reason: "source is required"}
	}
	load := &bq.JobConfigurationLoad{DestinationTable: l.Dst.toBQ()}
	if err := l.Src.populateLoadConfig(load); err != nil {
		return nil, err
	}

	format, err := l.SourceFormat.normalize()
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = inferDataFormat(load.SourceUris[0])
	}
	load.SourceFormat = string(format)

	create, err := l.CreateDisposition.normalize()
	if err != nil {
		return nil, err
	}
	load.CreateDisposition = string(create)
	write, err := l.WriteDisposition.normalize()
	if err != nil {
		return nil, err
	}
	load.WriteDisposition = string(write)

	if err := l.CSVOptions.populateLoadConfig(load); err != nil {
		return nil, err
	}
	if l.Schema != nil {
		if err := l.Schema.validate(); err != nil {
			return nil, &ConfigValidationError{Field: "Schema", Reason: err.Error()}
		}
		load.Schema = l.Schema.toBQ()
	}
	load.Autodetect = l.AutoDetect
	if len(l.ProjectionFields) > 0 {
		if format != DatastoreBackup {
			return nil, &ConfigValidationError{Field: "ProjectionFields", Value: l.ProjectionFields, Reason: "only allowed for DatastoreBackup sources"}
		}
		load.ProjectionFields = append([]string(nil), l.ProjectionFields...)
	}

	return &bq.Job{
		JobReference: l.JobIDConfig.createJobRef(l.c, l.Dst),
		Configuration: &bq.JobConfiguration{
			Load:   load,
			Labels: maps.Clone(l.Labels),
			DryRun: l.DryRun,
		},
	}, nil
}

// Run initiates a load job.
func (l *Loader) Run(ctx context.Context) (*Job, error) {
	job, err := l.Build()
	if err != nil {
		return nil, err
	}
	if l.c == nil {
		return nil, errors.New("bigquery: Loader has no Client; create it with Table.LoaderFrom on a table from Client.Dataset")
	}
	res, err := l.c.s.insertJob(ctx, l.c.projectID, job)
	if err != nil {
		return nil, err
	}
	return bqToJob(res, l.c)
}
