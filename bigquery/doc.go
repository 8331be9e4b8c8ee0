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

/*
Package bigquery reads BigQuery query results and table rows page by page,
and starts load jobs from Google Cloud Storage.

The following assumes a basic familiarity with BigQuery concepts.
See https://cloud.google.com/bigquery/docs.

# Creating a Client

To start working with this package, create a client:

	ctx := context.Background()
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		// TODO: Handle error.
	}

# Reading Query Results

Look up a query job by ID and read its results. The first page comes back
as a Cursor:

	job, err := client.JobFromID(ctx, jobID)
	if err != nil {
		// TODO: Handle error.
	}
	cur, err := job.Read(ctx, bigquery.WithMaxResults(1000))
	if err != nil {
		// TODO: Handle error.
	}
	for _, row := range cur.Rows() {
		fmt.Println(row["name"], row["age"])
	}

A Cursor never changes. NextPage returns the following page as a new Cursor:

	for cur.HasNext() {
		cur, err = cur.NextPage(ctx)
		if err != nil {
			// TODO: Handle error.
		}
		// ...
	}

To walk every row across pages, use a RowIterator:

	it := job.Rows(ctx, bigquery.WithRequestLimit(10))
	for row, err := range it.All() {
		if err != nil {
			// TODO: Handle error.
		}
		fmt.Println(row)
	}

When the iteration stops because of the request limit, it.Token() can be
passed to WithPageToken to continue later.

# Reading Tables

	cur, err := client.Dataset("my_dataset").Table("my_table").Read(ctx)

# Values

Each Row maps column names to decoded values. See Value for the Go type of
each BigQuery column type. A cell that cannot be decoded fails the page
with a *DecodeError.

# Loading Data

Load data from Google Cloud Storage into a table:

	gcsRef := bigquery.NewGCSReference("gs://my-bucket/my-object.csv")
	loader := client.Dataset("my_dataset").Table("my_table").LoaderFrom(gcsRef)
	loader.CreateDisposition = bigquery.CreateNever
	loader.SkipLeadingRows = 1
	job, err := loader.Run(ctx)
	if err != nil {
		// TODO: Handle error.
	}

The source format is inferred from the object name when not set. Call
Loader.Build to inspect the job request without submitting it.

# Errors

Errors returned by this client are often of the type *googleapi.Error,
wrapped in a *SourceFetchError when they come from a page fetch. Use
errors.As to inspect them.
*/
package bigquery // import "github.com/bqkit/gcloud/bigquery"
