// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// RetryPolicy bounds retries of transient provider failures.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
	Logger     zerolog.Logger
}

type retryingProvider struct {
	next   Provider
	policy RetryPolicy
}

// Retrying wraps p so transient failures (see IsTransient) are retried up
// to policy.MaxRetries times with a fixed delay. Other errors return
// immediately.
func Retrying(p Provider, policy RetryPolicy) Provider {
	if policy.MaxRetries <= 0 {
		return p
	}
	return &retryingProvider{next: p, policy: policy}
}

func (r *retryingProvider) Name() string { return r.next.Name() }

func (r *retryingProvider) Complete(ctx context.Context, req Request) (Response, error) {
	var resp Response
	op := func() error {
		var err error
		resp, err = r.next.Complete(ctx, req)
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.policy.Delay), uint64(r.policy.MaxRetries)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		r.policy.Logger.Warn().Str("provider", r.next.Name()).Err(err).Dur("wait", wait).Msg("llm.retry")
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return Response{}, err
	}
	return resp, nil
}
