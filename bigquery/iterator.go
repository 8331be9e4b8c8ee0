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
	"iter"

	gaxIterator "github.com/googleapis/gax-go/v2/iterator"
	"google.golang.org/api/iterator"
)

type iteratorState int

const (
	// No page has been fetched yet.
	stateInit iteratorState = iota
	// A page fetch is in flight.
	stateFetching
	// A page is held; rows may remain in it or in pages after it.
	stateHasPage
	// The last page has been consumed.
	stateExhausted
)

// RowIterator is an iterator over the rows of a result, across pages.
// It is not safe for concurrent use.
type RowIterator struct {
	ctx   context.Context
	state iteratorState
	// start produces the first page of an iterator created in stateInit.
	start func(ctx context.Context) (*Cursor, error)
	cur   *Cursor
	rows  []Row
	// fetches counts the page fetches of this traversal.
	fetches int
	limit   int
}

// All returns an iterator. If an error is returned by the iterator, the
// iterator will stop after that iteration.
func (it *RowIterator) All() iter.Seq2[Row, error] {
	return gaxIterator.RangeAdapter(it.Next)
}

// Next returns the next row. Its second return value is iterator.Done if
// there are no more rows, either because the result is exhausted or because
// the request limit has been reached. After an error other than
// iterator.Done, Next may be called again to retry the failed fetch.
func (it *RowIterator) Next() (Row, error) {
	for len(it.rows) == 0 {
		if err := it.advance(); err != nil {
			return nil, err
		}
	}
	row := it.rows[0]
	it.rows = it.rows[1:]
	return row, nil
}

// advance fetches the next page. A page may be empty and still have a
// successor, so Next calls advance until rows arrive.
func (it *RowIterator) advance() error {
	switch {
	case it.state == stateExhausted:
		return iterator.Done
	case it.state == stateInit:
		return it.fetch(it.start)
	case !it.cur.HasNext():
		it.state = stateExhausted
		return iterator.Done
	case it.limit > 0 && it.fetches >= it.limit:
		return iterator.Done
	}
	return it.fetch(it.cur.NextPage)
}

func (it *RowIterator) fetch(f func(context.Context) (*Cursor, error)) error {
	prev := it.state
	it.state = stateFetching
	c, err := f(it.ctx)
	if err != nil {
		it.state = prev
		return err
	}
	it.fetches++
	it.cur = c
	it.rows = c.rows
	it.state = stateHasPage
	return nil
}

// Token returns the page token to resume from with WithPageToken: the token
// of the first page not yet fetched, or "" if there is none.
func (it *RowIterator) Token() string {
	if it.cur == nil {
		return ""
	}
	return it.cur.Token()
}

// Schema returns the schema of the rows, or nil if no page has been fetched.
func (it *RowIterator) Schema() Schema {
	if it.cur == nil {
		return nil
	}
	return it.cur.Schema()
}

// TotalRows returns the total number of rows in the result, or zero if no
// page has been fetched.
func (it *RowIterator) TotalRows() uint64 {
	if it.cur == nil {
		return 0
	}
	return it.cur.TotalRows()
}
