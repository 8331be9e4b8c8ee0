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

package trace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bqkit/gcloud/internal/testutil"
	"go.opentelemetry.io/otel/attribute"
	otcodes "go.opentelemetry.io/otel/codes"
	"google.golang.org/api/googleapi"
)

func TestStartSpan(t *testing.T) {
	ctx := context.Background()
	te := testutil.NewOpenTelemetryTestExporter()
	t.Cleanup(func() {
		te.Unregister(ctx)
	})

	ctx = StartSpan(ctx, "test-span", attribute.Int64("max_results", 10))
	TracePrintf(ctx, map[string]interface{}{"rows": 3}, "page %d", 1)
	wrapped := fmt.Errorf("fetching: %w", &googleapi.Error{Code: http.StatusBadRequest, Message: "INVALID ARGUMENT"})
	EndSpan(ctx, wrapped)

	spans := te.Spans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if got, want := s.Name, "test-span"; got != want {
		t.Errorf("name: got %s, want %s", got, want)
	}
	if got, want := s.Status.Code, otcodes.Error; got != want {
		t.Errorf("status code: got %v, want %v", got, want)
	}
	if got, want := s.Status.Description, "INVALID ARGUMENT"; got != want {
		t.Errorf("status description: got %q, want %q", got, want)
	}
	if len(s.Events) < 1 || s.Events[0].Name != "page 1" {
		t.Errorf("events: got %v, want first event %q", s.Events, "page 1")
	}
	if len(s.Attributes) != 1 || s.Attributes[0].Key != "max_results" || s.Attributes[0].Value.AsInt64() != 10 {
		t.Errorf("attributes: got %v", s.Attributes)
	}
}

func TestEndSpanPlainError(t *testing.T) {
	ctx := context.Background()
	te := testutil.NewOpenTelemetryTestExporter()
	t.Cleanup(func() {
		te.Unregister(ctx)
	})

	ctx = StartSpan(ctx, "plain")
	EndSpan(ctx, errors.New("boom"))
	spans := te.Spans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got, want := spans[0].Status.Description, "boom"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEndSpanOK(t *testing.T) {
	ctx := context.Background()
	te := testutil.NewOpenTelemetryTestExporter()
	t.Cleanup(func() {
		te.Unregister(ctx)
	})

	EndSpan(StartSpan(ctx, "ok"), nil)
	spans := te.Spans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got := spans[0].Status.Code; got != otcodes.Unset {
		t.Errorf("status: got %v, want Unset", got)
	}
}
