// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyProvider struct {
	errs  []error
	calls int
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) Complete(context.Context, Request) (Response, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return Response{}, f.errs[f.calls-1]
	}
	return Response{Text: "ok"}, nil
}

func testPolicy(n int) RetryPolicy {
	return RetryPolicy{MaxRetries: n, Delay: time.Millisecond, Logger: zerolog.Nop()}
}

func TestRetryingTransientThenSuccess(t *testing.T) {
	f := &flakyProvider{errs: []error{
		&APIError{Provider: "x", StatusCode: 429},
		&APIError{Provider: "x", StatusCode: 503},
	}}
	resp, err := Retrying(f, testPolicy(3)).Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 3, f.calls)
}

func TestRetryingPermanentError(t *testing.T) {
	f := &flakyProvider{errs: []error{&APIError{Provider: "x", StatusCode: 400}}}
	_, err := Retrying(f, testPolicy(3)).Complete(context.Background(), Request{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, 1, f.calls)
}

func TestRetryingExhausted(t *testing.T) {
	transient := &APIError{Provider: "x", StatusCode: 500}
	f := &flakyProvider{errs: []error{transient, transient, transient, transient}}
	_, err := Retrying(f, testPolicy(2)).Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 3, f.calls)
}

func TestRetryingDisabled(t *testing.T) {
	f := &flakyProvider{}
	assert.Same(t, Provider(f), Retrying(f, RetryPolicy{}))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&APIError{StatusCode: 429}))
	assert.True(t, IsTransient(&APIError{StatusCode: 502}))
	assert.False(t, IsTransient(&APIError{StatusCode: 401}))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(nil))
}
