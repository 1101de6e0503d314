package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/internal/repository"
)

func TestWithRetryTreatsDuplicateAfterRetryAsSuccess(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return fmt.Errorf("%w: conn reset", repository.ErrStorageUnavailable)
		}
		return repository.ErrAlreadyExists
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryFirstDuplicateIsError(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return repository.ErrAlreadyExists
	})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	assert.Equal(t, 1, calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return repository.ErrStorageUnavailable
	})
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	assert.Equal(t, 3, calls)
}

func TestCollectLatency(t *testing.T) {
	src := make(chan time.Duration, 8)
	done := make(chan struct{})
	out := collectLatency(src, done)
	for i := 1; i <= 5; i++ {
		src <- time.Duration(i) * time.Millisecond
	}
	close(done)
	xs := <-out
	assert.Len(t, xs, 5)
	assert.Equal(t, 5*time.Millisecond, pct(xs, 0.95))
	assert.Equal(t, 3*time.Millisecond, pct(xs, 0.50))
}
