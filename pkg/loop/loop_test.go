package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInvokesThunksInOrder(t *testing.T) {
	l := New[*int](8)
	owner := new(int)

	go l.Run(owner)

	var got []int
	done := make(chan struct{})
	l.Push(func(o *int) { *o = 1; got = append(got, *o) })
	l.Push(func(o *int) { *o = 2; got = append(got, *o) })
	l.Push(func(o *int) { *o = 3; got = append(got, *o); close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("thunks never ran")
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestShutdownUnblocksRun(t *testing.T) {
	l := New[*int](1)
	owner := new(int)

	done := make(chan struct{})
	go func() {
		l.Run(owner)
		close(done)
	}()

	l.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
	assert.False(t, l.Running())
}

func TestPushAfterShutdownDoesNotBlock(t *testing.T) {
	l := New[*int](1)
	l.Shutdown()

	done := make(chan struct{})
	go func() {
		l.Push(func(*int) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push after Shutdown blocked")
	}
}

func TestRunReturnsOnNilThunk(t *testing.T) {
	l := New[*int](1)
	owner := new(int)

	done := make(chan struct{})
	go func() {
		l.Run(owner)
		close(done)
	}()

	l.thunks <- nil

	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
