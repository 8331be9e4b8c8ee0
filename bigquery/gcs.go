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
	"strings"

	"cloud.google.com/go/storage"
	bq "google.golang.org/api/bigquery/v2"
)

// GCSReference is a reference to one or more Google Cloud Storage objects, which together constitute
// an input to a load operation.
type GCSReference struct {
	// URIs refer to Google Cloud Storage objects.
	URIs []string
}

// NewGCSReference constructs a reference to one or more Google Cloud Storage objects, which together constitute a data source.
// In the simple case, a single URI in the form gs://bucket/object may refer to a single GCS object.
// Data may also be split into multiple files, if multiple URIs or URIs containing wildcards are provided.
// Each URI may contain one '*' wildcard character, which (if present) must come after the bucket name.
func NewGCSReference(uri ...string) *GCSReference {
	return &GCSReference{URIs: uri}
}

// NewGCSReferenceFromObjects constructs a reference to the given storage
// objects, each addressed as gs://bucket/object.
func NewGCSReferenceFromObjects(objs ...*storage.ObjectHandle) *GCSReference {
	uris := make([]string, 0, len(objs))
	for _, o := range objs {
		uris = append(uris, gsURL(o.BucketName(), o.ObjectName()))
	}
	return &GCSReference{URIs: uris}
}

func gsURL(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}

func (gcs *GCSReference) populateLoadConfig(conf *bq.JobConfigurationLoad) error {
	if len(gcs.URIs) == 0 {
		return &ConfigValidationError{Field: "Src", Reason: "no source URIs"}
	}
	for _, u := range gcs.URIs {
		if strings.TrimSpace(u) == "" {
			return &ConfigValidationError{Field: "Src", Value: u, Reason: "empty source URI"}
		}
	}
	conf.SourceUris = append([]string(nil), gcs.URIs...)
	return nil
}
