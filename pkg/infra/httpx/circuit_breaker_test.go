package httpx

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_Success(t *testing.T) {
	breaker := NewCircuitBreaker("success-test", 30*time.Second, 3)
	assert.NoError(t, breaker.Execute(func() error { return nil }))
	assert.Equal(t, "closed", breaker.State())
}

func TestCircuitBreaker_FailureWrapsName(t *testing.T) {
	breaker := NewCircuitBreaker("failure-test", 30*time.Second, 3)
	testErr := errors.New("model offline")

	err := breaker.Execute(func() error { return testErr })
	assert.ErrorIs(t, err, testErr)
	assert.Contains(t, err.Error(), "failure-test")
	assert.False(t, IsOpen(err))
}

func TestCircuitBreaker_RecoversPanics(t *testing.T) {
	for _, value := range []interface{}{"boom", errors.New("boom"), 42} {
		breaker := NewCircuitBreaker("panic-test", 30*time.Second, 3)
		err := breaker.Execute(func() error { panic(value) })
		assert.ErrorContains(t, err, "panic recovered:")
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	breaker := NewCircuitBreaker("open-test", 30*time.Second, 3, func(_, from, to string) {
		transitions = append(transitions, from+"->"+to)
	})

	for i := 0; i < 3; i++ {
		assert.Error(t, breaker.Execute(func() error { return errors.New("failure") }))
	}

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	assert.True(t, IsOpen(err))
	assert.False(t, called)
	assert.Equal(t, "open", breaker.State())
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	breaker := NewCircuitBreaker("recovery-test", 50*time.Millisecond, 1)
	assert.Error(t, breaker.Execute(func() error { return errors.New("trigger") }))

	time.Sleep(100 * time.Millisecond)

	assert.NoError(t, breaker.Execute(func() error { return nil }))
	assert.Equal(t, "closed", breaker.State())
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	breaker := NewCircuitBreaker("concurrent-test", 30*time.Second, 100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = breaker.Execute(func() error {
				if id%2 == 0 {
					return nil
				}
				return errors.New("failure")
			})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, "closed", breaker.State())
}
