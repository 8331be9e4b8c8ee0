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
	"sync"

	bq "google.golang.org/api/bigquery/v2"
)

// resultSchema is what a completed query job's probe reveals: the schema of
// its results and, when the job wrote to a table, where they can be listed.
type resultSchema struct {
	schema      Schema
	destination *bq.TableReference
}

// schemaCache holds the result schemas of completed query jobs, keyed by
// project, location and job ID. Entries are never evicted; a completed job's
// schema does not change. Concurrent writers for the same job store
// equivalent values, and the last one wins.
type schemaCache struct {
	mu      sync.RWMutex
	entries map[string]*resultSchema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{entries: make(map[string]*resultSchema)}
}

func schemaCacheKey(projectID, location, jobID string) string {
	return projectID + "/" + location + "/" + jobID
}

func (c *schemaCache) get(key string) (*resultSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rs, ok := c.entries[key]
	return rs, ok
}

func (c *schemaCache) put(key string, rs *resultSchema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = rs
}
