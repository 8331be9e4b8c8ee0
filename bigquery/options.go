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

import "time"

// A ReadOption customizes how rows are read.
//
// WithMaxResults applies to every page fetch. WithStartIndex, WithPageToken
// and WithTimeout apply to the first fetch only. WithRequestLimit applies to
// row iteration.
type ReadOption func(*readConfig)

type readConfig struct {
	maxResults    int64
	setMaxResults bool
	startIndex    uint64
	pageToken     string
	timeout       time.Duration
	requestLimit  int
}

func newReadConfig(opts []ReadOption) *readConfig {
	conf := &readConfig{}
	for _, o := range opts {
		o(conf)
	}
	return conf
}

// firstPage is the request for the page a read starts from.
func (c *readConfig) firstPage() pageParams {
	return pageParams{
		pageToken:     c.pageToken,
		startIndex:    c.startIndex,
		maxResults:    c.maxResults,
		setMaxResults: c.setMaxResults,
	}
}

// WithMaxResults caps the number of rows returned per page. The backend may
// return fewer.
func WithMaxResults(n int64) ReadOption {
	return func(c *readConfig) {
		c.maxResults = n
		c.setMaxResults = true
	}
}

// WithStartIndex starts the read at the zero-based row index i. It is ignored
// when a page token is also supplied.
func WithStartIndex(i uint64) ReadOption {
	return func(c *readConfig) { c.startIndex = i }
}

// WithPageToken resumes a read at the page identified by token, as returned
// by Cursor.Token or RowIterator.Token.
func WithPageToken(token string) ReadOption {
	return func(c *readConfig) { c.pageToken = token }
}

// WithTimeout bounds how long the backend waits for a query job to complete
// before answering the schema probe. It has no effect on table reads.
func WithTimeout(d time.Duration) ReadOption {
	return func(c *readConfig) { c.timeout = d }
}

// WithRequestLimit caps the number of page fetches made by one row iteration,
// counting the fetch of the starting page. Zero means no limit.
func WithRequestLimit(n int) ReadOption {
	return func(c *readConfig) { c.requestLimit = n }
}
