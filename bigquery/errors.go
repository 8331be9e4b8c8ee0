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
	"errors"
	"fmt"
)

// ErrJobIncomplete is wrapped by the SourceFetchError returned when results
// are requested for a job that has not finished running.
var ErrJobIncomplete = errors.New("bigquery: job has not completed")

// A DecodeError reports a cell whose raw value cannot be converted to the type
// declared for it by the schema.
type DecodeError struct {
	// Path locates the cell within the row, e.g. "address.lines[2]".
	Path string
	// Type is the declared type of the cell.
	Type FieldType
	// Raw is the value received from the backend.
	Raw interface{}
	// Err is the underlying conversion error.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bigquery: cannot decode %#v as %s at %q: %v", e.Raw, e.Type, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// A SourceFetchError reports a failed page fetch, either because the backend
// call failed or because its response was malformed. The error from the
// transport is available through errors.As, e.g. as a *googleapi.Error.
type SourceFetchError struct {
	// Op is the backend method, e.g. "tabledata.list".
	Op string
	// Resource names the job or table the call addressed.
	Resource string
	Err      error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("bigquery: %s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// A ConfigValidationError reports a load configuration that cannot be turned
// into a job request. No request is issued when it is returned.
type ConfigValidationError struct {
	// Field is the configuration field at fault.
	Field string
	// Value is the rejected value, if any.
	Value  interface{}
	Reason string
}

func (e *ConfigValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("bigquery: invalid load configuration: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("bigquery: invalid load configuration: %s %#v: %s", e.Field, e.Value, e.Reason)
}
