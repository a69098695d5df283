package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvery_RunsUntilCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	done := make(chan struct{})
	go func() {
		Every(ctx, "test", time.Millisecond, func(context.Context) {
			if runs.Add(1) >= 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not exit after cancel")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestEvery_FirstRunIsImmediate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 1)
	go Every(ctx, "test", time.Hour, func(context.Context) {
		ran <- struct{}{}
	})

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("first tick should not wait for the interval")
	}
}

func TestEvery_SurvivesPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	done := make(chan struct{})
	go func() {
		Every(ctx, "test", time.Millisecond, func(context.Context) {
			if runs.Add(1) >= 2 {
				cancel()
				return
			}
			panic("boom")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler died on task panic")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}

func TestEvery_RejectsInvalidArgs(t *testing.T) {
	// 两种参数错误都应立即返回而不是自旋
	Every(context.Background(), "nil-task", time.Second, nil)
	Every(context.Background(), "zero-interval", 0, func(context.Context) {})
}
