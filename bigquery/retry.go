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
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	modinternal "github.com/bqkit/gcloud/internal"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/googleapi"
)

type retryConfig struct {
	backoff     *gax.Backoff
	shouldRetry func(err error) bool
}

// RetryOption configures how the client retries failed backend calls.
type RetryOption interface {
	apply(config *retryConfig)
}

// WithBackoff sets the backoff timing used between attempts. Zero fields of
// backoff fall back to the gax defaults.
func WithBackoff(backoff gax.Backoff) RetryOption {
	return withBackoff{backoff: backoff}
}

type withBackoff struct {
	backoff gax.Backoff
}

func (wb withBackoff) apply(config *retryConfig) {
	bo := wb.backoff
	config.backoff = &bo
}

// WithErrorFunc replaces the retry predicate. A failed call is retried if and
// only if shouldRetry returns true for its error. ShouldRetry is the default.
func WithErrorFunc(shouldRetry func(err error) bool) RetryOption {
	return withErrorFunc{shouldRetry: shouldRetry}
}

type withErrorFunc struct {
	shouldRetry func(err error) bool
}

func (wef withErrorFunc) apply(config *retryConfig) {
	config.shouldRetry = wef.shouldRetry
}

// ShouldRetry reports whether err is transient: a backendError or
// rateLimitExceeded reason, a 5xx status, or a reset or refused connection.
func ShouldRetry(err error) bool {
	return retryableError(err, defaultRetryReasons)
}

// Matches the guidance in https://cloud.google.com/bigquery/sla.
func defaultRetryBackoff() gax.Backoff {
	return gax.Backoff{
		Initial:    1 * time.Second,
		Max:        32 * time.Second,
		Multiplier: 2,
	}
}

func defaultRetryConfig() *retryConfig {
	bo := defaultRetryBackoff()
	return &retryConfig{backoff: &bo}
}

// runWithRetry calls the function until it returns nil or a non-retryable
// error, or the context is done.
func runWithRetry(ctx context.Context, retry *retryConfig, call func() error) error {
	return runWithRetryExplicit(ctx, retry, call, defaultRetryReasons)
}

func runWithRetryExplicit(ctx context.Context, retry *retryConfig, call func() error, allowedReasons []string) error {
	bo := defaultRetryBackoff()
	if retry.backoff != nil {
		bo.Initial = retry.backoff.Initial
		bo.Max = retry.backoff.Max
		bo.Multiplier = retry.backoff.Multiplier
	}
	shouldRetry := retry.shouldRetry
	if shouldRetry == nil {
		shouldRetry = func(err error) bool { return retryableError(err, allowedReasons) }
	}
	return modinternal.Retry(ctx, bo, func() (stop bool, err error) {
		err = call()
		if err == nil {
			return true, nil
		}
		return !shouldRetry(err), err
	})
}

var (
	defaultRetryReasons = []string{"backendError", "rateLimitExceeded"}
	jobRetryReasons     = []string{"backendError", "rateLimitExceeded", "internalError"}
	retry5xxCodes       = []int{
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
)

func retryableError(err error, allowedReasons []string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	// http2 refuses streams opened before the server's SETTINGS frame arrives.
	if err.Error() == "http2: stream closed" {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if len(apiErr.Errors) > 0 && slices.Contains(allowedReasons, apiErr.Errors[0].Reason) {
			return true
		}
		return slices.Contains(retry5xxCodes, apiErr.Code)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		msg := urlErr.Error()
		return strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset")
	}
	var tempErr interface{ Temporary() bool }
	return errors.As(err, &tempErr) && tempErr.Temporary()
}
