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
	"log/slog"
	"net/http"
	"runtime"
	"strings"

	"github.com/bqkit/gcloud/bigquery/internal"
	"github.com/googleapis/gax-go/v2/internallog"
	bq "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/option/internaloption"
)

const (
	// Scope is the Oauth2 scope for the service.
	// For relevant BigQuery scopes, see:
	// https://developers.google.com/identity/protocols/googlescopes#bigqueryv2
	Scope           = "https://www.googleapis.com/auth/bigquery"
	userAgentPrefix = "bqkit-golang-bigquery"
)

var xGoogHeader = fmt.Sprintf("gl-go/%s gccl/%s", strings.TrimPrefix(runtime.Version(), "go"), internal.Version)

func setClientHeader(headers http.Header) {
	headers.Set("x-goog-api-client", xGoogHeader)
}

// Client may be used to read query results and table rows, and to start load
// jobs. It is safe for concurrent use.
type Client struct {
	// Location, if set, will be used as the default location for all
	// subsequent job operations. A location specified directly in one of
	// those operations will override this value.
	Location string

	projectID string
	s         service
	retry     *retryConfig
	logger    *slog.Logger
	schemas   *schemaCache
}

// NewClient constructs a new Client which can perform BigQuery operations.
// Operations performed via the client are billed to the specified GCP project.
//
// A logger supplied with option.WithLogger receives debug records for every
// backend call. Without one, logging is controlled by the
// GOOGLE_SDK_GO_LOGGING_LEVEL environment variable.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("bigquery: projectID must be non-empty")
	}
	o := []option.ClientOption{
		option.WithScopes(Scope),
		option.WithUserAgent(fmt.Sprintf("%s/%s", userAgentPrefix, internal.Version)),
	}
	o = append(o, opts...)
	bqs, err := bq.NewService(ctx, o...)
	if err != nil {
		return nil, fmt.Errorf("bigquery: constructing client: %w", err)
	}
	logger := internallog.New(internaloption.GetLogger(opts))
	retry := defaultRetryConfig()
	return &Client{
		projectID: projectID,
		s:         &bigqueryService{s: bqs, retry: retry, logger: logger},
		retry:     retry,
		logger:    logger,
		schemas:   newSchemaCache(),
	}, nil
}

// Project returns the project ID or number for this instance of the client.
func (c *Client) Project() string {
	return c.projectID
}

// Close closes any resources held by the client.
// Close should be called when the client is no longer needed.
// It need not be called at program exit.
func (c *Client) Close() error {
	return nil
}

// SetRetry configures the retry behavior of the client's transport. Page
// fetches, job lookups and job inserts made after the call use the new
// settings.
func (c *Client) SetRetry(opts ...RetryOption) {
	for _, opt := range opts {
		opt.apply(c.retry)
	}
}
